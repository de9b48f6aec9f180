package services

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"Gin_postgres_redis_peer_lending/db"
)

const DefaultCodeTTL = 24 * time.Hour

// Engine 聚合借用生命周期的四个组件，共享同一个 store 句柄
type Engine struct {
	Requests     *RequestBroker
	Resolutions  *Coordinator
	Transactions *StateMachine
	Handover     *HandoverService
}

type options struct {
	log            *slog.Logger
	now            func() time.Time
	codeTTL        time.Duration
	defaultMaxDays int
	limiter        AttemptLimiter
	codeGen        func() (string, error)
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.log = l } }

// WithClock overrides time.Now; tests use it to move past code expiry.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithCodeTTL(d time.Duration) Option { return func(o *options) { o.codeTTL = d } }

func WithDefaultMaxBorrowDays(n int) Option { return func(o *options) { o.defaultMaxDays = n } }

func WithAttemptLimiter(l AttemptLimiter) Option { return func(o *options) { o.limiter = l } }

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(o *options) { o.codeGen = gen }
}

func New(repo *db.Repo, opts ...Option) *Engine {
	o := options{
		log:            slog.Default(),
		now:            time.Now,
		codeTTL:        DefaultCodeTTL,
		defaultMaxDays: 14,
		codeGen:        randomCode,
	}
	for _, fn := range opts {
		fn(&o)
	}
	utc := o.now
	o.now = func() time.Time { return utc().UTC() }

	sm := &StateMachine{repo: repo, log: o.log.With("component", "transactions"), now: o.now}
	return &Engine{
		Requests: &RequestBroker{
			repo: repo, log: o.log.With("component", "requests"), defaultMaxDays: o.defaultMaxDays,
		},
		Resolutions: &Coordinator{
			repo: repo, steps: sm, log: o.log.With("component", "resolutions"), now: o.now,
		},
		Transactions: sm,
		Handover: &HandoverService{
			repo: repo, steps: sm, log: o.log.With("component", "handover"), now: o.now,
			ttl: o.codeTTL, limiter: o.limiter, codeGen: o.codeGen,
		},
	}
}

var codeSpace = big.NewInt(1_000_000)

// randomCode 均匀随机 6 位数字
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
