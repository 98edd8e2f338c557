package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/aukilabs/surfacegrid/featureflag"
	sghttp "github.com/aukilabs/surfacegrid/http"
	"github.com/aukilabs/surfacegrid/models"
	"github.com/aukilabs/surfacegrid/modules/surfacegrid"
	"github.com/aukilabs/surfacegrid/scatter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The surfacegrid version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "surfacegrid_info",
		Help:        "Surfacegrid information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// Keeps the config field names readable by the cli package when the binary
// is obfuscated.
var _ = reflect.TypeOf(config{})

type config struct {
	Addr                  string        `cli:""        env:"SURFACEGRID_ADDR"                    help:"Listening address for client requests."`
	AdminAddr             string        `cli:""        env:"SURFACEGRID_ADMIN_ADDR"              help:"Admin listening address."`
	LogLevel              string        `cli:""        env:"SURFACEGRID_LOG_LEVEL"               help:"Log level (debug|info|warning|error)."`
	LogIndent             bool          `cli:""        env:"SURFACEGRID_LOG_INDENT"              help:"Indent logs."`
	MaxPointCount         int           `cli:""        env:"SURFACEGRID_MAX_POINT_COUNT"         help:"Default maximum number of returned poses. 0 or less disables decimation."`
	DensityX              float64       `cli:""        env:"SURFACEGRID_DENSITY_X"               help:"Default number of samples per scale unit along a plane right axis."`
	DensityY              float64       `cli:""        env:"SURFACEGRID_DENSITY_Y"               help:"Default number of samples per scale unit along a plane up axis."`
	ScaleFactor           float64       `cli:""        env:"SURFACEGRID_SCALE_FACTOR"            help:"World units per meter."`
	FlipNormals           bool          `cli:""        env:"SURFACEGRID_FLIP_NORMALS"            help:"Point sample normals away from the right x up cross product."`
	MergeTolerance        float64       `cli:",hidden" env:"SURFACEGRID_MERGE_TOLERANCE"         help:"Shared edge merge tolerance as a fraction of the smallest stride. Needs MERGE_SHARED_EDGES."`
	IntermediatePlanes    int           `cli:",hidden" env:"SURFACEGRID_INTERMEDIATE_PLANES"     help:"Number of planes synthesized between floor and ceiling. Needs INTERMEDIATE_PLANES."`
	MaxSamplesPerPlane    int           `cli:",hidden" env:"SURFACEGRID_MAX_SAMPLES_PER_PLANE"   help:"Planes needing more samples are skipped."`
	MaxIntermediatePlanes int           `cli:",hidden" env:"SURFACEGRID_MAX_INTERMEDIATE_PLANES" help:"Requests asking for more intermediate planes are rejected."`
	Partitions            []string      `cli:""        env:"SURFACEGRID_PARTITIONS"              help:"Comma separated partition package names that can receive scattered actors."`
	ScatterQueueSize      int           `cli:",hidden" env:"SURFACEGRID_SCATTER_QUEUE_SIZE"      help:"The size of the queue where scatter jobs are stored."`
	ShutdownTimeout       time.Duration `cli:",hidden" env:"SURFACEGRID_SHUTDOWN_TIMEOUT"        help:"Time given to queued scatter jobs before exiting."`
	Events                eventsConfig  `cli:",hidden" env:"-"                                   help:"Event pusher configuration."`
	FeatureFlags          []string      `cli:",hidden" env:"SURFACEGRID_FEATURE_FLAGS"           help:"Comma separated feature flags"`
	Version               bool          `cli:""        env:"-"                                   help:"Show version."`
	Help                  bool          `cli:""        env:"-"                                   help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"SURFACEGRID_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed."`
	FlushInterval time.Duration `cli:",hidden" env:"SURFACEGRID_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"SURFACEGRID_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"SURFACEGRID_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:                  ":4100",
		AdminAddr:             ":18191",
		LogLevel:              logs.InfoLevel.String(),
		MaxPointCount:         500,
		DensityX:              1,
		DensityY:              1,
		ScaleFactor:           100,
		FlipNormals:           true,
		MergeTolerance:        0.4,
		MaxSamplesPerPlane:    surfacegrid.DefaultMaxSamplesPerPlane,
		MaxIntermediatePlanes: surfacegrid.DefaultMaxIntermediatePlanes,
		ScatterQueueSize:      128,
		ShutdownTimeout:       time.Second * 5,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the surface grid server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "surfacegrid",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	var partitions models.PartitionStore
	for _, name := range conf.Partitions {
		partitions.Register(name)
	}

	scatterHandler := scatter.Handler{
		Partitions: &partitions,
		JobChan:    make(chan scatter.Job, conf.ScatterQueueSize),
	}
	scatterHandler.HandleJobs(ctx)

	grid := sghttp.GridHandler{
		Defaults: sghttp.GridDefaults{
			MaxPointCount:      conf.MaxPointCount,
			DensityX:           conf.DensityX,
			DensityY:           conf.DensityY,
			ScaleFactor:        conf.ScaleFactor,
			FlipNormals:        conf.FlipNormals,
			MergeTolerance:     conf.MergeTolerance,
			IntermediatePlanes: conf.IntermediatePlanes,

			MaxSamplesPerPlane:    conf.MaxSamplesPerPlane,
			MaxIntermediatePlanes: conf.MaxIntermediatePlanes,
		},
		FeatureFlags: featureflag.New(conf.FeatureFlags),
	}

	readinessCheck := func() bool {
		return ctx.Err() == nil
	}

	var service http.ServeMux
	service.Handle("/health", sghttp.HandleWithCORS(http.HandlerFunc(sghttp.HandleHealthCheck)))
	service.Handle("/ready", sghttp.HandleWithCORS(sghttp.HandleReadyCheck(readinessCheck)))
	service.Handle("/version", sghttp.HandleWithCORS(sghttp.HandleVersion(version)))
	service.Handle("/surface-grid", sghttp.HandleWithCORS(grid))
	service.Handle("GET /surface-grid/ws", websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()
			grid.HandleWebSocket(conn)
		},
	})
	service.Handle("/scatter", sghttp.HandleWithCORS(sghttp.ScatterHandler{
		Grid:       grid,
		Partitions: &partitions,
		Scatter:    scatterHandler,
	}))
	service.Handle("GET /partitions/{name}", sghttp.HandleWithCORS(sghttp.HandlePartition(&partitions)))
	service.Handle("DELETE /partitions/{name}/actors/{id}", sghttp.HandleWithCORS(sghttp.HandleDespawn(&partitions)))

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", sghttp.HandleHealthCheck)
	admin.HandleFunc("/ready", sghttp.HandleReadyCheck(readinessCheck))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("partitions", len(conf.Partitions)).
		WithTag("feature_flags", conf.FeatureFlags).
		Info("starting surfacegrid server")

	sghttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			sghttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)

	drainScatterJobs(scatterHandler, conf.ShutdownTimeout)
}

// drainScatterJobs spawns the jobs still queued when the servers stop.
func drainScatterJobs(h scatter.Handler, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case job := <-h.JobChan:
			res := h.Spawn(ctx, job)
			logs.WithTag("partition", job.Partition).
				WithTag("spawned", res.Spawned).
				WithTag("failed", res.Failed).
				Info("queued scatter job drained")

		default:
			return
		}
	}
}

func validateConfig(conf config) error {
	if conf.DensityX <= 0 || conf.DensityY <= 0 {
		return errors.New("densities must be greater than zero").
			WithTag("density_x", conf.DensityX).
			WithTag("density_y", conf.DensityY)
	}

	if conf.ScaleFactor <= 0 {
		return errors.New("scale factor must be greater than zero").
			WithTag("scale_factor", conf.ScaleFactor)
	}

	if conf.MergeTolerance < 0 {
		return errors.New("merge tolerance is negative").
			WithTag("merge_tolerance", conf.MergeTolerance)
	}

	if conf.IntermediatePlanes < 0 {
		return errors.New("intermediate plane count is negative").
			WithTag("intermediate_planes", conf.IntermediatePlanes)
	}

	if conf.MaxSamplesPerPlane <= 0 || conf.MaxIntermediatePlanes <= 0 {
		return errors.New("sample limits must be greater than zero").
			WithTag("max_samples_per_plane", conf.MaxSamplesPerPlane).
			WithTag("max_intermediate_planes", conf.MaxIntermediatePlanes)
	}

	if conf.IntermediatePlanes > conf.MaxIntermediatePlanes {
		return errors.New("intermediate plane count is over its limit").
			WithTag("intermediate_planes", conf.IntermediatePlanes).
			WithTag("max_intermediate_planes", conf.MaxIntermediatePlanes)
	}

	if conf.ScatterQueueSize <= 0 {
		return errors.New("scatter queue size must be greater than zero").
			WithTag("scatter_queue_size", conf.ScatterQueueSize)
	}

	return nil
}
