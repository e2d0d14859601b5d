package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const (
	numWorkers   = 50
	testDuration = 10 * time.Second
	numGroups    = 8
	numVisitors  = 300
)

var (
	baseURL  = flag.String("url", "http://127.0.0.1:8092", "server base URL")
	password = flag.String("password", "change-me", "admin password")
)

var userAgents = []string{
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148 MicroMessenger/8.0",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36 MicroMessenger/8.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/120.0",
	"curl/8.4.0",
}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()

	fmt.Println("=== wxHm Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Groups: %d | Visitors: %d\n\n", numWorkers, testDuration, numGroups, numVisitors)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	qr := sampleImage()

	fmt.Println("\n--- Phase 1: Seeding groups (POST /admin/groups) ---")
	for g := 0; g < numGroups; g++ {
		r := doUpload(rand.New(rand.NewSource(int64(g))), qr)
		if r.err {
			fmt.Printf("  seeding group %d failed with status %d\n", g, r.status)
		}
	}

	fmt.Println("\n--- Phase 2: Visits with concurrent uploads (95% visit, 5% upload) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.95 {
			return doVisit(rng)
		}
		return doUpload(rng, qr)
	})

	fmt.Println("\n--- Phase 3: Stats reads under visit load (70% visit, 30% stats) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70:
			return doVisit(rng)
		case r < 0.85:
			return doAdminGet("GET /admin/stats", "/admin/stats")
		default:
			return doAdminGet("GET /admin/stats/{name}", "/admin/stats/"+groupName(rng))
		}
	})
}

func groupName(rng *rand.Rand) string {
	return fmt.Sprintf("group%02d", rng.Intn(numGroups))
}

func sampleImage() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Inc()
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-26s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 92))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-26s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 92))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(max(totalOps, 1))*100, rps)
}

func send(endpoint string, req *http.Request, want int) result {
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

func doVisit(rng *rand.Rand) result {
	req, _ := http.NewRequest(http.MethodGet, *baseURL+"/group/"+groupName(rng), nil)
	req.Header.Set("User-Agent", userAgents[rng.Intn(len(userAgents))])
	req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.%d.%d", rng.Intn(numVisitors)/250, rng.Intn(250)+1))
	return send("GET /group/{name}", req, http.StatusOK)
}

func doUpload(rng *rand.Rand, img []byte) result {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("group_name", groupName(rng))
	fw, _ := mw.CreateFormFile("file", "qr.png")
	_, _ = fw.Write(img)
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, *baseURL+"/admin/groups", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Admin-Password", *password)
	return send("POST /admin/groups", req, http.StatusCreated)
}

func doAdminGet(endpoint, path string) result {
	req, _ := http.NewRequest(http.MethodGet, *baseURL+path, nil)
	req.Header.Set("X-Admin-Password", *password)
	return send(endpoint, req, http.StatusOK)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
