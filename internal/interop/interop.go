package interop

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ethanbaker/attio-relay/internal/attio"
	"github.com/ethanbaker/attio-relay/internal/relay"
	"github.com/ethanbaker/attio-relay/pkg/utils"
	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
)

// Interop bundles the process-wide objects shared by every entrypoint
type Interop struct {
	App    *newrelic.Application // nil when telemetry is disabled
	Config *utils.Config
	Logger *log.Logger
	Attio  *attio.Client
	Relay  *relay.Service
}

// NewInteroperability loads configuration and builds the relay stack
func NewInteroperability() (*Interop, error) {
	cfg, err := utils.Load(utils.EnvFile())
	if err != nil {
		return nil, err
	}

	return New(cfg)
}

// New builds the relay stack from cfg
func New(cfg *utils.Config) (*Interop, error) {
	app, err := utils.NewTelemetry(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new relic application: %w", err)
	}

	logger := utils.NewLogger(cfg, app)

	var transport http.RoundTripper = http.DefaultTransport
	if app != nil {
		transport = newrelic.NewRoundTripper(transport)
	}

	client := attio.NewClient(
		cfg.Get("ATTIO_API_URL"),
		attio.WithTimeout(cfg.GetDurationWithDefault("ATTIO_TIMEOUT", attio.DEFAULT_TIMEOUT)),
		attio.WithTransport(transport),
		attio.WithLogger(logger),
	)

	logger.Debugf("attio client using %s with a %s timeout", client.BaseURL(), client.Timeout())

	return &Interop{
		App:    app,
		Config: cfg,
		Logger: logger,
		Attio:  client,
		Relay:  relay.NewService(client, logger),
	}, nil
}

// Shutdown flushes telemetry and closes the log file
func (i *Interop) Shutdown() {
	if i.App != nil {
		i.App.Shutdown(time.Second * 3)
	}

	if err := utils.CloseLogger(i.Logger); err != nil {
		log.Warnf("[INTEROP]: failed to close log file: %s", err)
	}
}
