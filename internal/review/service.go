// Package review orchestrates the four core engines (scheduler, placement,
// credit, composer) against the storage.Store port. It is the transactional
// seam between the pure engines — which take values in and return values
// out — and persistence, mirroring the teacher's study service: validate,
// run the pure computation, persist inside a transaction, log.
package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/credit"
	"github.com/heartmarshall/myenglish-backend/internal/placement"
	"github.com/heartmarshall/myenglish-backend/internal/scheduler"
	"github.com/heartmarshall/myenglish-backend/internal/storage"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private), narrower than storage.Store at each
// point of use, per the teacher's own repo-interface convention. Each one is
// satisfied directly by storage.Store's own interfaces; Service never
// depends on the aggregate.
// ---------------------------------------------------------------------------

type learnerStore = storage.LearnerStore
type memoryStore = storage.MemoryStore
type reviewLogStore = storage.ReviewLogStore
type itemStore = storage.ItemQueryStore
type placementStore = storage.PlacementStore
type dashboardStore = storage.DashboardStore

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator mints opaque identifiers for new placement sessions. The
// default is google/uuid, matching the teacher's id-generation convention
// everywhere else in the repo.
type IDGenerator interface {
	NewID() string
}

// Clock abstracts "now" for testability, matching the teacher's
// study.Service.clock field.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service wires the four engines to a storage.Store-shaped dependency set.
type Service struct {
	learners  learnerStore
	memories  memoryStore
	log       reviewLogStore
	items     itemStore
	placement placementStore
	dashboard dashboardStore
	tx        txManager

	schedulerParams scheduler.Parameters
	placementParams placement.Parameters
	composerBatch   int
	tables          credit.Tables
	tokenizer       credit.Tokenizer
	ids             IDGenerator
	clock           Clock
	logger          *slog.Logger
	undoWindow      time.Duration
}

// Deps bundles Service's constructor arguments so adding a new collaborator
// does not ripple through every call site.
type Deps struct {
	Learners        learnerStore
	Memories        memoryStore
	ReviewLog       reviewLogStore
	Items           itemStore
	Placement       placementStore
	Dashboard       dashboardStore
	Tx              txManager
	SchedulerParams scheduler.Parameters
	PlacementParams placement.Parameters
	ComposerBatch   int
	Tables          credit.Tables
	Tokenizer       credit.Tokenizer
	IDs             IDGenerator
	Clock           Clock
	Logger          *slog.Logger
	// UndoWindow bounds how long after a review UndoReview may revert it.
	// Defaults to 10 minutes, matching SchedulerConfig's default.
	UndoWindow time.Duration
}

// NewService constructs a Service. Clock and IDs default to the real system
// clock and google/uuid respectively when left nil.
func NewService(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = systemClock{}
	}
	ids := d.IDs
	if ids == nil {
		ids = uuidGenerator{}
	}
	tables := d.Tables
	if tables == nil {
		tables = credit.DefaultTables()
	}
	tokenizer := d.Tokenizer
	if tokenizer == nil {
		tokenizer = credit.BasicTokenizer{}
	}
	composerBatch := d.ComposerBatch
	if composerBatch <= 0 {
		composerBatch = 20
	}
	undoWindow := d.UndoWindow
	if undoWindow <= 0 {
		undoWindow = 10 * time.Minute
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		learners:        d.Learners,
		memories:        d.Memories,
		log:             d.ReviewLog,
		items:           d.Items,
		placement:       d.Placement,
		dashboard:       d.Dashboard,
		tx:              d.Tx,
		schedulerParams: d.SchedulerParams,
		placementParams: d.PlacementParams,
		composerBatch:   composerBatch,
		tables:          tables,
		tokenizer:       tokenizer,
		ids:             ids,
		clock:           clock,
		logger:          logger.With("service", "review"),
		undoWindow:      undoWindow,
	}
}
