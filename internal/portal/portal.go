// Package portal is the reconfiguration surface of the station: the stand-in
// for the captive access point the device raises. While active it serves a
// small form for the place name; a submitted save is handed to the scheduler
// through a single-slot channel and consumed exactly once.
package portal

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

var validate = validator.New()

// Options configures a portal instance.
type Options struct {
	Addr string
	SSID string

	// CurrentPlace pre-fills the form with the live place name.
	CurrentPlace func() string

	// LinkUp feeds the status line on the form page.
	LinkUp func() bool

	Log *slog.Logger
}

// Portal owns the fiber app lifecycle. Activate and Deactivate are called
// from the scheduler thread; handlers run on the server's own goroutines and
// touch only the atomics, the save channel and the session their app was
// built with.
type Portal struct {
	opts Options

	app       *fiber.App
	active    bool
	startedAt time.Time
	sessionID string

	saves        chan string
	lastActivity atomic.Int64 // unix nanos of the last request seen
}

func New(opts Options) *Portal {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Portal{
		opts:  opts,
		saves: make(chan string, 1),
	}
}

// Activate raises the portal: builds the app, starts listening and marks the
// activation time the idle timeout counts from. Activating an active portal
// is a no-op.
func (p *Portal) Activate(now time.Time) error {
	if p.active {
		return nil
	}

	p.sessionID = uuid.NewString()
	p.app = p.newApp()
	p.startedAt = now
	p.lastActivity.Store(0)
	p.active = true

	go func(app *fiber.App, session string) {
		if err := app.Listen(p.opts.Addr); err != nil {
			p.opts.Log.Error("portal listener stopped", "session", session, "error", err)
		}
	}(p.app, p.sessionID)

	p.opts.Log.Info("config portal up", "ssid", p.opts.SSID, "addr", p.opts.Addr, "session", p.sessionID)
	return nil
}

// Deactivate tears the access point down. Must coincide with every
// transition out of the active state.
func (p *Portal) Deactivate() error {
	if !p.active {
		return nil
	}
	p.active = false

	err := p.app.ShutdownWithTimeout(2 * time.Second)
	p.opts.Log.Info("config portal down", "session", p.sessionID)
	p.app = nil
	return err
}

func (p *Portal) Active() bool { return p.active }

func (p *Portal) StartedAt() time.Time { return p.startedAt }

// LastActivity returns when a client was last seen in this activation, or
// the zero time if none has connected yet.
func (p *Portal) LastActivity() time.Time {
	ns := p.lastActivity.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// ClientCount reports currently open client connections.
func (p *Portal) ClientCount() int {
	if !p.active || p.app == nil {
		return 0
	}
	return int(p.app.Server().GetOpenConnectionsCount())
}

// PendingSave pops a submitted place name, if any. Non-blocking; each save
// is observed at most once.
func (p *Portal) PendingSave() (string, bool) {
	select {
	case place := <-p.saves:
		return place, true
	default:
		return "", false
	}
}

type saveForm struct {
	Place   string `validate:"required,max=96"`
	Session string `validate:"required"`
}

// newApp builds the fiber app for one activation. The session ID is captured
// into the handler closures here: a handler still in flight after a slow
// shutdown must keep seeing its own activation's session, not a later one's.
func (p *Portal) newApp() *fiber.App {
	session := p.sessionID

	app := fiber.New(fiber.Config{
		AppName:               "roundstation-portal",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		p.lastActivity.Store(time.Now().UnixNano())
		return c.Next()
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "roundstation-portal"})
	})

	app.Get("/", p.handleForm(session))
	app.Post("/save", p.handleSave(session))

	return app
}

var formTmpl = template.Must(template.New("portal").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.SSID}}</title></head>
<body>
<h1>{{.SSID}}</h1>
<p>Network: {{.LinkStatus}}</p>
<form method="POST" action="/save">
  <label for="place">City / Address</label>
  <input type="text" id="place" name="place" value="{{.Place}}" maxlength="96">
  <input type="hidden" name="session" value="{{.Session}}">
  <button type="submit">Save &amp; Restart</button>
</form>
</body>
</html>
`))

func (p *Portal) handleForm(session string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "disconnected"
		if p.opts.LinkUp != nil && p.opts.LinkUp() {
			status = "connected"
		}
		place := ""
		if p.opts.CurrentPlace != nil {
			place = p.opts.CurrentPlace()
		}

		var buf bytes.Buffer
		err := formTmpl.Execute(&buf, map[string]string{
			"SSID":       p.opts.SSID,
			"LinkStatus": status,
			"Place":      place,
			"Session":    session,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render form")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	}
}

func (p *Portal) handleSave(session string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form := saveForm{
			Place:   c.FormValue("place"),
			Session: c.FormValue("session"),
		}
		if err := validate.Struct(form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if form.Session != session {
			// A form rendered by a previous activation; its save must not replay.
			return fiber.NewError(fiber.StatusConflict, "stale portal session, reload the page")
		}

		select {
		case p.saves <- form.Place:
			p.opts.Log.Info("save requested", "place", form.Place, "session", session)
		default:
			// A save is already pending; the device restarts before it could
			// matter anyway.
		}

		return c.SendString(fmt.Sprintf("Saved %q. The station is restarting.", form.Place))
	}
}
