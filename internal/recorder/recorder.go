// Package recorder keeps a run history in a local SQLite database: one row
// per run plus its force events and wind samples. It is an optional side
// channel; callers keep running when the database cannot be opened.
package recorder

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/san-kum/forcelab/internal/hostsim"
)

// Run is one recorded run.
type Run struct {
	ID        uint      `gorm:"primaryKey"`
	RunID     string    `gorm:"uniqueIndex"`
	Scenario  string    `gorm:"index"`
	StartedAt time.Time
	Steps     int
	Dt        float64
	Duration  float64
	Seed      int64
	Impulses  float64
	PeakForce float64
	TotalWork float64
	GustRange float64
}

// ForceEventRow is one force application within a run.
type ForceEventRow struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index"`
	Step      int
	Time      float64
	Source    string
	Body      string
	Kind      string
	Mode      string
	Magnitude float64
}

// WindSampleRow is one zone sample within a run.
type WindSampleRow struct {
	ID     uint   `gorm:"primaryKey"`
	RunID  string `gorm:"index"`
	Step   int
	Time   float64
	Zone   string
	Force  float64
	Sample float64
}

const insertBatch = 500

// Manager owns the history database.
type Manager struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the SQLite file at path and migrates the schema.
func Open(path string, log zerolog.Logger) (*Manager, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &ForceEventRow{}, &WindSampleRow{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Manager{db: db, log: log}, nil
}

// Record stores a finished run under the given run ID.
func (m *Manager) Record(runID string, w *hostsim.World, res *hostsim.Result) error {
	sc := w.Scenario()
	run := Run{
		RunID:     runID,
		Scenario:  res.Scenario,
		StartedAt: time.Now().Add(-res.Elapsed),
		Steps:     res.StepsTaken,
		Dt:        sc.World.Dt,
		Duration:  sc.World.Duration,
		Seed:      sc.World.Seed,
		Impulses:  res.Metrics["impulses"],
		PeakForce: res.Metrics["peak_force"],
		TotalWork: res.Metrics["total_work"],
		GustRange: res.Metrics["gust_range"],
	}
	if err := m.db.Create(&run).Error; err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}

	var events []ForceEventRow
	var samples []WindSampleRow
	for _, fr := range res.Frames {
		for _, e := range fr.Events {
			events = append(events, ForceEventRow{
				RunID: runID, Step: e.Step, Time: e.Time,
				Source: e.Source, Body: e.Body,
				Kind: e.Kind.String(), Mode: e.Mode.String(),
				Magnitude: e.Magnitude,
			})
		}
		for _, z := range fr.Wind {
			samples = append(samples, WindSampleRow{
				RunID: runID, Step: fr.Step, Time: fr.Time,
				Zone: z.Zone, Force: z.Force, Sample: z.Sample,
			})
		}
	}
	if len(events) > 0 {
		if err := m.db.CreateInBatches(events, insertBatch).Error; err != nil {
			return fmt.Errorf("record events for %s: %w", runID, err)
		}
	}
	if len(samples) > 0 {
		if err := m.db.CreateInBatches(samples, insertBatch).Error; err != nil {
			return fmt.Errorf("record wind samples for %s: %w", runID, err)
		}
	}

	m.log.Debug().Str("run", runID).
		Int("events", len(events)).Int("samples", len(samples)).
		Msg("run recorded")
	return nil
}

// History lists recorded runs, newest first. A zero limit means all.
func (m *Manager) History(limit int) ([]Run, error) {
	q := m.db.Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Events returns a recorded run's force events in step order.
func (m *Manager) Events(runID string) ([]ForceEventRow, error) {
	var rows []ForceEventRow
	err := m.db.Where("run_id = ?", runID).Order("step").Find(&rows).Error
	return rows, err
}

// WindSamples returns a recorded run's zone samples in step order.
func (m *Manager) WindSamples(runID string) ([]WindSampleRow, error) {
	var rows []WindSampleRow
	err := m.db.Where("run_id = ?", runID).Order("step").Find(&rows).Error
	return rows, err
}

// Close releases the underlying connection.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
