package handlers

import (
	"reflect"
	"strings"

	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DefaultMaxUpload bounds multipart activity bodies (10MB).
const DefaultMaxUpload = 10 << 20

// Handler serves the HTTP API on top of the services.
type Handler struct {
	engine    *services.Engine
	feeds     *services.Paginator
	watchers  *services.WatcherService
	groups    *services.GroupService
	validate  *validator.Validate
	log       zerolog.Logger
	maxUpload int64
}

type Deps struct {
	Engine    *services.Engine
	Feeds     *services.Paginator
	Watchers  *services.WatcherService
	Groups    *services.GroupService
	Log       zerolog.Logger
	MaxUpload int64
}

func New(d Deps) *Handler {
	v := validator.New()
	// report json field names in validation messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if d.MaxUpload <= 0 {
		d.MaxUpload = DefaultMaxUpload
	}
	return &Handler{
		engine:    d.Engine,
		feeds:     d.Feeds,
		watchers:  d.Watchers,
		groups:    d.Groups,
		validate:  v,
		log:       d.Log,
		maxUpload: d.MaxUpload,
	}
}
