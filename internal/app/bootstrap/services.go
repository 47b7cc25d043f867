package bootstrap

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/clinic-triage/internal/appointments"
	appconfig "github.com/wolfman30/clinic-triage/internal/config"
	"github.com/wolfman30/clinic-triage/internal/console"
	"github.com/wolfman30/clinic-triage/internal/doctors"
	"github.com/wolfman30/clinic-triage/internal/export"
	"github.com/wolfman30/clinic-triage/internal/medications"
	"github.com/wolfman30/clinic-triage/internal/notes"
	"github.com/wolfman30/clinic-triage/internal/observability/metrics"
	"github.com/wolfman30/clinic-triage/internal/patients"
	"github.com/wolfman30/clinic-triage/internal/triage"
	"github.com/wolfman30/clinic-triage/pkg/logging"
)

// BuildTriageStore picks the admission store for TRIAGE_BACKEND. The memory
// backend has no store.
func BuildTriageStore(cfg *appconfig.Config, rt *Runtime) (triage.AdmissionStore, error) {
	switch cfg.TriageBackend {
	case appconfig.BackendMemory, "":
		return nil, nil
	case appconfig.BackendPostgres:
		if rt == nil || rt.Pool == nil {
			return nil, fmt.Errorf("bootstrap: postgres triage backend needs DATABASE_URL")
		}
		return triage.NewPostgresStore(rt.Pool), nil
	case appconfig.BackendRedis:
		if rt == nil || rt.Redis == nil {
			return nil, fmt.Errorf("bootstrap: redis triage backend needs REDIS_ADDR")
		}
		return triage.NewRedisStore(rt.Redis, "triage"), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown triage backend %q", cfg.TriageBackend)
	}
}

// BuildAppointments picks the appointment line for APPOINTMENT_BACKEND.
func BuildAppointments(cfg *appconfig.Config, rt *Runtime) (appointments.Queue, error) {
	switch cfg.AppointmentBackend {
	case appconfig.BackendMemory, "":
		return appointments.NewMemoryQueue(), nil
	case appconfig.BackendRedis:
		if rt == nil || rt.Redis == nil {
			return nil, fmt.Errorf("bootstrap: redis appointment backend needs REDIS_ADDR")
		}
		return appointments.NewRedisQueue(rt.Redis, ""), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown appointment backend %q", cfg.AppointmentBackend)
	}
}

// BuildExporter wires the CSV exporter. s3Client may be nil when no bucket
// is configured.
func BuildExporter(cfg *appconfig.Config, s3Client export.S3API, logger *logging.Logger) *export.Exporter {
	var sinks []export.Sink
	if dir := strings.TrimSpace(cfg.ExportDir); dir != "" {
		sinks = append(sinks, export.NewFileSink(dir))
	}
	if bucket := strings.TrimSpace(cfg.ExportBucket); bucket != "" && s3Client != nil {
		sinks = append(sinks, export.NewS3Sink(s3Client, bucket, ""))
	}
	return export.NewExporter(logger, sinks...)
}

// BuildServices assembles the desk and its collaborators. Records live in
// Postgres when a pool is open and in memory otherwise.
func BuildServices(cfg *appconfig.Config, rt *Runtime, reg *prometheus.Registry, exporter *export.Exporter, logger *logging.Logger) (console.Services, error) {
	if cfg == nil {
		return console.Services{}, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if rt == nil {
		rt = &Runtime{}
	}

	store, err := BuildTriageStore(cfg, rt)
	if err != nil {
		return console.Services{}, err
	}
	line, err := BuildAppointments(cfg, rt)
	if err != nil {
		return console.Services{}, err
	}

	var registerer prometheus.Registerer
	var gatherer prometheus.Gatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	svc := console.Services{
		Desk: triage.NewDesk(triage.DeskConfig{
			MinUrgency: cfg.TriageMinUrgency,
			MaxUrgency: cfg.TriageMaxUrgency,
			Store:      store,
			Metrics:    metrics.NewTriageMetrics(registerer),
			Logger:     logger.With("component", "triage"),
		}),
		Appointments: line,
		Notes:        notes.NewHistory(cfg.NoteHistoryLimit),
		Exporter:     exporter,
		Gatherer:     gatherer,
	}

	if rt.Pool != nil {
		svc.Patients = patients.NewPostgresDirectory(rt.Pool)
		svc.Snapshots = notes.NewStore(rt.Pool)
	} else {
		svc.Patients = patients.NewMemoryDirectory()
	}
	if rt.SQL != nil {
		svc.Medications = medications.NewSQLLog(rt.SQL)
		svc.Doctors = doctors.NewSQLDirectory(rt.SQL)
	} else {
		svc.Medications = medications.NewMemoryLog()
		svc.Doctors = doctors.NewMemoryDirectory()
	}

	logger.Info("services ready",
		"triage_backend", cfg.TriageBackend,
		"appointment_backend", cfg.AppointmentBackend,
		"records", recordsBackend(rt),
		"export", exporter.Enabled(),
	)
	return svc, nil
}

func recordsBackend(rt *Runtime) string {
	if rt.Pool != nil {
		return appconfig.BackendPostgres
	}
	return appconfig.BackendMemory
}
