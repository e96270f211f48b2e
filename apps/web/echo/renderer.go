package echoweb

import (
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	appfs "github.com/trezcool/mazingira/fs"
)

type (
	// Flash is a one-shot notification carried across a redirect.
	Flash struct {
		Level   string `json:"level"` // info | success | warning | danger
		Message string `json:"message"`
	}

	// Page is the data every template renders against.
	Page struct {
		AppName string
		User    interface{}
		Flashes []Flash
		Errors  map[string]string
		Data    interface{}
	}

	pageRenderer struct {
		appName   string
		templates map[string]*template.Template
	}
)

var _ echo.Renderer = (*pageRenderer)(nil)

// newPageRenderer parses every page under templates/web against the base
// layout once at startup.
func newPageRenderer(conf *core.Config) *pageRenderer {
	root := "templates/web"
	entries, err := fs.ReadDir(appfs.FS, root)
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "reading web templates"))
	}

	templates := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") || path.Ext(fname) != ".gohtml" {
			continue
		}
		tmpl, err := template.ParseFS(appfs.FS, path.Join(root, "_base.gohtml"), path.Join(root, fname))
		if err != nil {
			log.Fatalf("%+v", errors.Wrap(err, "parsing web template "+fname))
		}
		if conf.Debug || conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		templates[strings.TrimSuffix(fname, ".gohtml")] = tmpl
	}
	return &pageRenderer{appName: conf.AppName, templates: templates}
}

// render builds the common page data (session user, flashes, form errors)
// around a handler's own data and renders the named template.
func (s *server) render(ctx echo.Context, name string, data interface{}, fldErrs ...map[string]string) error {
	s.loadSession(ctx)

	page := Page{Flashes: popFlashes(ctx), Data: data}
	if _, err := getContextClaims(ctx); err == nil {
		if usr, err := getContextUser(ctx, s.deps.UserSvc); err == nil {
			page.User = usr
		}
	}
	if len(fldErrs) > 0 {
		page.Errors = fldErrs[0]
	}
	return ctx.Render(http.StatusOK, name, page)
}

// loadSession parses the session cookie on pages that are not behind the
// session gate, so the nav still knows who is browsing.
func (s *server) loadSession(ctx echo.Context) {
	if _, err := getContextClaims(ctx); err == nil {
		return
	}
	cookie, err := ctx.Cookie(s.deps.Conf.Server.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	if claims, err := parseToken(cookie.Value, s.deps.Conf); err == nil {
		ctx.Set(contextClaimsKey, claims)
	}
}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.New("unknown template " + name)
	}
	page, ok := data.(Page)
	if !ok {
		page = Page{Data: data}
	}
	page.AppName = r.appName
	return errors.Wrap(tmpl.Execute(w, page), "rendering "+name)
}
