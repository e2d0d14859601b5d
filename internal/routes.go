package internal

import (
	"net/http"
	"wxhm/internal/controllers"
	"wxhm/internal/providers"
	"wxhm/internal/structures"
)

type Controllers struct {
	Group  *controllers.GroupController
	Admin  *controllers.AdminController
	Stats  *controllers.StatsController
	Notice *controllers.NoticeController
	Files  *controllers.FilesController
}

func NewControllers(
	group *controllers.GroupController,
	admin *controllers.AdminController,
	stats *controllers.StatsController,
	notice *controllers.NoticeController,
	files *controllers.FilesController,
) *Controllers {
	return &Controllers{Group: group, Admin: admin, Stats: stats, Notice: notice, Files: files}
}

func InitRoutes(c *Controllers, conf *structures.Config, logger providers.Logger) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()
	admin := func(h http.HandlerFunc) http.Handler {
		return providers.AdminAuthMiddleware(conf.Admin.Password, conf.MaxUploadBytes(), logger, h)
	}

	routers.Get("/group/{name}", http.HandlerFunc(c.Group.Visit))
	routers.Get("/uploads/{name}/{file}", http.HandlerFunc(c.Group.ServeAsset))
	routers.Get("/files/{name}", http.HandlerFunc(c.Files.Serve))

	routers.Get("/admin/groups", admin(c.Admin.ListGroups))
	routers.Post("/admin/groups", admin(c.Admin.Upload))
	routers.Post("/admin/groups/rename", admin(c.Admin.Rename))
	routers.Post("/admin/groups/delete/{name}", admin(c.Admin.Delete))
	routers.Get("/admin/groups/{name}/sharecode", admin(c.Admin.ShareCode))

	routers.Get("/admin/stats", admin(c.Stats.Overview))
	routers.Get("/admin/stats/{name}", admin(c.Stats.Group))

	routers.Get("/admin/notice", admin(c.Notice.List))
	routers.Post("/admin/notice", admin(c.Notice.Save))
	routers.Post("/admin/notice/delete/{id}", admin(c.Notice.Delete))
	routers.Post("/admin/notice/send/{id}", admin(c.Notice.Send))

	routers.Get("/admin/files", admin(c.Files.List))
	routers.Post("/admin/files", admin(c.Files.Upload))
	routers.Post("/admin/files/delete", admin(c.Files.Delete))
	return routers
}
