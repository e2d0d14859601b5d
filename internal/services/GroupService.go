package services

import (
	"context"
	"fmt"
	"slices"
	"time"
	"wxhm/internal/assets"
	"wxhm/internal/ledger"
	"wxhm/internal/models"
	"wxhm/internal/notify"
	"wxhm/internal/providers"

	"github.com/skip2/go-qrcode"
)

const (
	defaultShareCodeSize = 256
	maxShareCodeSize     = 1024
)

// GroupServiceInterface drives every externally triggered group action.
// Each action updates the store or ledger and enqueues exactly one
// notification; expiry discovered during a read enqueues one per evicted
// asset.
type GroupServiceInterface interface {
	GetActiveAsset(ctx context.Context, group string) (*models.GroupAsset, error)
	RecordVisit(ctx context.Context, group, originID string, class models.ClientClass)
	Visit(ctx context.Context, group, originID, userAgent string) (*models.GroupAsset, error)
	StoreAsset(ctx context.Context, group string, raw []byte, origin string) (*models.GroupAsset, error)
	RenameGroup(ctx context.Context, group, newName, origin string) error
	DeleteGroup(ctx context.Context, group, origin string) error
	NotifyEvent(ev models.NotificationEvent)
	ListGroups() ([]string, error)
	ShareCode(group, pageURL string, size int) ([]byte, error)
}

type GroupService struct {
	store      assets.StoreInterface
	ledger     ledger.LedgerInterface
	dispatcher notify.DispatcherInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewGroupService(
	store assets.StoreInterface,
	visits ledger.LedgerInterface,
	dispatcher notify.DispatcherInterface,
	logger providers.Logger,
) GroupServiceInterface {
	return &GroupService{
		store:      store,
		ledger:     visits,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

func (gs *GroupService) emit(group, action, origin, actor string) {
	gs.dispatcher.Enqueue(models.NewNotificationEvent(group, action, origin, actor, gs.now()))
}

func (gs *GroupService) GetActiveAsset(_ context.Context, group string) (*models.GroupAsset, error) {
	res, err := gs.store.Active(group)
	if err != nil {
		return nil, err
	}
	for _, a := range res.Evicted {
		gs.logger.Debugf(providers.TypeStorage, "Asset %s/%s expired on read", group, a.Filename)
		gs.emit(group, models.ActionExpired, "", models.ActorSystem)
	}
	return res.Asset, nil
}

// RecordVisit appends the page view to the ledger. A ledger failure does not
// fail the visit and the notification is still sent.
func (gs *GroupService) RecordVisit(ctx context.Context, group, originID string, class models.ClientClass) {
	rec := models.VisitRecord{
		Group:    group,
		Day:      models.Day(gs.now()),
		OriginID: originID,
		Class:    class,
	}
	if err := gs.ledger.Record(ctx, rec); err != nil {
		gs.logger.Errorf(providers.TypeStorage, "Recording visit to %s from %s failed: %s", group, originID, err)
	}
	gs.emit(group, models.ActionVisit, originID, models.ActorVisitor)
}

func (gs *GroupService) Visit(ctx context.Context, group, originID, userAgent string) (*models.GroupAsset, error) {
	asset, err := gs.GetActiveAsset(ctx, group)
	if err != nil {
		return nil, err
	}
	gs.RecordVisit(ctx, group, originID, models.ParseClientClass(userAgent))
	return asset, nil
}

func (gs *GroupService) StoreAsset(_ context.Context, group string, raw []byte, origin string) (*models.GroupAsset, error) {
	asset, err := gs.store.Store(group, raw)
	if err != nil {
		return nil, err
	}
	gs.emit(group, models.ActionUpload, origin, models.ActorAdmin)
	return asset, nil
}

// RenameGroup moves the group's assets and visit history to the new name.
// The notification is addressed to the new name.
func (gs *GroupService) RenameGroup(ctx context.Context, group, newName, origin string) error {
	if group == newName {
		return fmt.Errorf("%w: new name equals old name", models.ErrValidation)
	}
	if err := gs.store.Rename(group, newName); err != nil {
		return err
	}
	if err := gs.ledger.RenameGroup(ctx, group, newName); err != nil {
		gs.logger.Errorf(providers.TypeStorage, "Moving visits of %s to %s failed: %s", group, newName, err)
	}
	gs.emit(newName, models.ActionRename(group, newName), origin, models.ActorAdmin)
	return nil
}

func (gs *GroupService) DeleteGroup(ctx context.Context, group, origin string) error {
	if err := gs.store.Delete(group); err != nil {
		return err
	}
	if err := gs.ledger.DeleteGroup(ctx, group); err != nil {
		gs.logger.Errorf(providers.TypeStorage, "Deleting visits of %s failed: %s", group, err)
	}
	gs.emit(group, models.ActionDelete, origin, models.ActorAdmin)
	return nil
}

// NotifyEvent enqueues a caller-built event, filling the ID and timestamp
// when they are missing.
func (gs *GroupService) NotifyEvent(ev models.NotificationEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = gs.now()
	}
	if ev.ID == "" {
		ev.ID = models.NewNotificationEvent(ev.Group, ev.Action, ev.Origin, ev.Actor, ev.Timestamp).ID
	}
	gs.dispatcher.Enqueue(ev)
}

func (gs *GroupService) ListGroups() ([]string, error) {
	return gs.store.Groups()
}

// ShareCode renders a PNG QR code pointing at the group's public page.
func (gs *GroupService) ShareCode(group, pageURL string, size int) ([]byte, error) {
	groups, err := gs.store.Groups()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(groups, group) {
		return nil, fmt.Errorf("group %q: %w", group, models.ErrNotFound)
	}
	if size <= 0 {
		size = defaultShareCodeSize
	}
	size = min(size, maxShareCodeSize)

	png, err := qrcode.Encode(pageURL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("%w: share code: %v", models.ErrValidation, err)
	}
	return png, nil
}
