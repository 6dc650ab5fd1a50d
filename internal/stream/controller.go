package stream

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/intervu/internal/questiongen"
)

// Fetch is a batch request issued by the controller. The caller runs it off
// the event loop and hands the BatchResult back to ApplyStart or Apply.
type Fetch struct {
	Generation uint64
	Initial    bool
	Request    questiongen.BatchRequest
}

// Run performs the fetch. It touches no controller state.
func (f *Fetch) Run(ctx context.Context, fetcher questiongen.BatchFetcher) BatchResult {
	items, err := fetcher.FetchBatch(ctx, f.Request)
	return BatchResult{
		Generation: f.Generation,
		Initial:    f.Initial,
		Items:      items,
		Err:        err,
	}
}

// BatchResult is the completion of a Fetch.
type BatchResult struct {
	Generation uint64
	Initial    bool
	Items      []questiongen.Item
	Err        error
}

// Controller owns the question queue and the fetch state. It is not safe
// for concurrent use; every method is expected to run on the event loop.
type Controller struct {
	cfg        Config
	records    []Record
	index      map[string]int
	fetch      FetchState
	generation uint64
	seq        uint64

	// live is set between StartSession and Reset.
	live bool

	now   func() time.Time
	newID func() string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) { c.newID = gen }
}

// NewController creates an empty controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		index: make(map[string]int),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Config returns the configuration of the current session.
func (c *Controller) Config() Config { return c.cfg }

// StartSession discards the queue and the fetch state and returns the fetch
// for the first batch. Results of fetches from earlier sessions become stale.
func (c *Controller) StartSession(cfg Config) *Fetch {
	c.cfg = cfg
	c.records = nil
	c.index = make(map[string]int)
	c.fetch = FetchState{InFlight: true}
	c.generation++
	c.live = true
	return &Fetch{
		Generation: c.generation,
		Initial:    true,
		Request:    c.request(),
	}
}

// Reset discards the session. Fetches still in flight become stale and no
// fetch is issued until the next StartSession.
func (c *Controller) Reset() {
	c.cfg = Config{}
	c.records = nil
	c.index = make(map[string]int)
	c.fetch = FetchState{}
	c.generation++
	c.live = false
}

// ApplyStart completes the first fetch of a session. It returns a
// *FetchError with Initial set if the fetch failed or produced nothing.
func (c *Controller) ApplyStart(res BatchResult) error {
	if res.Generation != c.generation || !res.Initial {
		return ErrStale
	}
	c.fetch.InFlight = false
	if res.Err != nil {
		c.fetch.Exhausted = true
		return &FetchError{Initial: true, Err: res.Err}
	}
	if len(res.Items) == 0 {
		c.fetch.Exhausted = true
		return &FetchError{Initial: true, Err: ErrNoQuestions}
	}
	c.append(res.Items)
	return nil
}

// RequestMore returns the next fetch, or nil while a fetch is in flight,
// once the stream is exhausted, or outside a session.
func (c *Controller) RequestMore() *Fetch {
	if !c.live || c.fetch.InFlight || c.fetch.Exhausted {
		return nil
	}
	c.fetch.InFlight = true
	return &Fetch{
		Generation: c.generation,
		Request:    c.request(),
	}
}

// Apply completes a fetch returned by RequestMore. Records are appended as
// one batch in received order. An empty result or a failure exhausts the
// stream; failures are not retried.
func (c *Controller) Apply(res BatchResult) Outcome {
	if res.Generation != c.generation || res.Initial {
		return Outcome{Stale: true}
	}
	c.fetch.InFlight = false
	if res.Err != nil {
		c.fetch.Exhausted = true
		return Outcome{Exhausted: true, Err: &FetchError{Err: res.Err}}
	}
	if len(res.Items) == 0 {
		c.fetch.Exhausted = true
		return Outcome{Exhausted: true}
	}
	return Outcome{Appended: c.append(res.Items)}
}

func (c *Controller) request() questiongen.BatchRequest {
	prior := make([]string, len(c.records))
	for i, r := range c.records {
		prior[i] = r.Prompt
	}
	return questiongen.BatchRequest{
		Topic:        c.cfg.Topic,
		Difficulty:   c.cfg.Difficulty,
		Size:         c.cfg.batchSize(),
		PriorPrompts: prior,
	}
}

func (c *Controller) append(items []questiongen.Item) int {
	now := c.now()
	batch := make([]Record, 0, len(items))
	for _, it := range items {
		id := c.newID()
		if _, dup := c.index[id]; dup {
			// Generators are expected to be unique; skip rather than alias.
			continue
		}
		c.seq++
		batch = append(batch, Record{
			ID:              id,
			Prompt:          it.Prompt,
			ReferenceAnswer: it.ReferenceAnswer,
			Topic:           c.cfg.Topic,
			CreatedAt:       now,
			Seq:             c.seq,
		})
		c.index[id] = len(c.records) + len(batch) - 1
	}
	c.records = append(c.records, batch...)
	return len(batch)
}

// UpdateAnswer replaces the answer of record id. Unknown ids are ignored.
func (c *Controller) UpdateAnswer(id, text string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.records[i].UserAnswer = text
	return true
}

// PatchRecord shallow-merges p onto record id. Unknown ids are ignored.
func (c *Controller) PatchRecord(id string, p Patch) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	r := &c.records[i]
	if p.ClearFeedback {
		r.Feedback = nil
	}
	if p.Feedback != nil {
		fb := *p.Feedback
		r.Feedback = &fb
	}
	if p.EvaluationFailed != nil {
		r.EvaluationFailed = *p.EvaluationFailed
	}
	if p.Reveal != nil {
		r.Reveal = *p.Reveal
	}
	if p.EvaluationInFlight != nil {
		r.EvaluationInFlight = *p.EvaluationInFlight
	}
	return true
}

// Len returns the number of queued records.
func (c *Controller) Len() int { return len(c.records) }

// Fetch returns the current fetch state.
func (c *Controller) Fetch() FetchState { return c.fetch }

// Record returns a copy of the record at i.
func (c *Controller) Record(i int) (Record, bool) {
	if i < 0 || i >= len(c.records) {
		return Record{}, false
	}
	return c.records[i].clone(), true
}

// Find returns a copy of record id and its index.
func (c *Controller) Find(id string) (Record, int, bool) {
	i, ok := c.index[id]
	if !ok {
		return Record{}, -1, false
	}
	return c.records[i].clone(), i, true
}

// Snapshot returns a copy of the queue and fetch state.
func (c *Controller) Snapshot() Snapshot {
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.clone()
	}
	return Snapshot{Records: out, Fetch: c.fetch}
}

func (r Record) clone() Record {
	if r.Feedback != nil {
		fb := *r.Feedback
		r.Feedback = &fb
	}
	return r
}
