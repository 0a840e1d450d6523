package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/memequiz-backend/internal/pkg/fallback"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

const (
	DefaultSourceTimeout = 15 * time.Second
	DefaultChainBudget   = 60 * time.Second
)

type ResolverConfig struct {
	SourceTimeout time.Duration
	// Budget bounds a whole resolution; sources left when it runs out are skipped.
	Budget    time.Duration
	OnAttempt func(fallback.Attempt)
	OnResult  func(source string)
}

// Resolver walks the source chain for a kind. It never returns an error:
// the worst case is a placeholder Resolution.
type Resolver struct {
	log   *logger.Logger
	video []Source
	gif   []Source
	cfg   ResolverConfig
}

func NewResolver(log *logger.Logger, video, gif []Source, cfg ResolverConfig) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultChainBudget
	}
	return &Resolver{
		log:   log.With("service", "MediaResolver"),
		video: video,
		gif:   gif,
		cfg:   cfg,
	}
}

func (r *Resolver) SourceNames(kind Kind) []string {
	var names []string
	for _, s := range r.chain(kind) {
		names = append(names, s.Name())
	}
	return names
}

func (r *Resolver) chain(kind Kind) []Source {
	if kind == KindVideo {
		return r.video
	}
	return r.gif
}

func (r *Resolver) Resolve(ctx context.Context, q Query) Resolution {
	if q.Kind == "" {
		q.Kind = KindGIF
	}
	if q.Keywords == "" {
		if q.Kind == KindVideo {
			q.Keywords = VideoKeywords(q.Prompt)
		} else {
			q.Keywords = GIFKeywords(q.Prompt)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Budget)
	defer cancel()

	sources := r.chain(q.Kind)
	candidates := make([]fallback.Candidate[Hit], 0, len(sources))
	for _, src := range sources {
		src := src
		candidates = append(candidates, fallback.Candidate[Hit]{
			Name: src.Name(),
			Invoke: func(ctx context.Context) (Hit, error) {
				return r.fetch(ctx, src, q)
			},
		})
	}

	res, err := fallback.Run(ctx, candidates, fallback.Policy{
		MaxAttempts: 1,
		OnAttempt:   r.cfg.OnAttempt,
	})

	notes := make([]Note, 0, len(res.Attempts))
	for _, a := range res.Attempts {
		if a.Err == nil {
			continue
		}
		n := noteFor(a.Candidate, a.Err)
		notes = append(notes, n)
		r.log.Warn("Media source declined", "source", a.Candidate, "kind", n.Kind, "reason", n.Reason, "error", a.Err)
	}

	if err != nil {
		if !errors.Is(err, fallback.ErrExhausted) {
			r.log.Warn("Media resolution cut short", "kind", q.Kind, "error", err)
		}
		r.observeResult("placeholder")
		return placeholder(q.Kind, q.Prompt, notes)
	}

	r.observeResult(res.Candidate)
	r.log.Info("Media resolved", "kind", q.Kind, "source", res.Candidate, "declined", len(notes))
	return Resolution{
		URL:           res.Value.URL,
		Kind:          q.Kind,
		Source:        res.Candidate,
		Format:        res.Value.Format,
		LowerFidelity: res.Value.LowerFidelity,
		Note:          composeNote(res.Value.Note, r.generativeNotes(q.Kind, notes)),
		Notes:         notes,
	}
}

func (r *Resolver) fetch(ctx context.Context, src Source, q Query) (hit Hit, err error) {
	timeout := r.cfg.SourceTimeout
	if ts, ok := src.(timeoutSource); ok && ts.Timeout() > 0 {
		timeout = ts.Timeout()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = unavailable("source panicked", fmt.Errorf("%v", p))
		}
	}()
	hit, err = src.Fetch(ctx, q)
	if err == nil && strings.TrimSpace(hit.URL) == "" {
		err = ErrNoResults
	}
	return hit, err
}

func (r *Resolver) generativeNotes(kind Kind, notes []Note) []Note {
	gen := map[string]bool{}
	for _, s := range r.chain(kind) {
		if g, ok := s.(generative); ok && g.Generative() {
			gen[s.Name()] = true
		}
	}
	var out []Note
	for _, n := range notes {
		if gen[n.Source] {
			out = append(out, n)
		}
	}
	return out
}

func (r *Resolver) observeResult(source string) {
	if r.cfg.OnResult != nil {
		r.cfg.OnResult(source)
	}
}

// composeNote joins a source's own note with why the generative sources
// before it declined. Configuration problems are listed apart from
// transient ones.
func composeNote(own string, declined []Note) string {
	var parts []string
	if own != "" {
		parts = append(parts, own)
	}
	var cfgReasons, otherReasons []string
	for _, n := range declined {
		entry := n.Source + ": " + n.Reason
		if n.Kind == NoteConfig {
			cfgReasons = append(cfgReasons, entry)
		} else {
			otherReasons = append(otherReasons, entry)
		}
	}
	if len(cfgReasons) > 0 {
		parts = append(parts, "AI generation unavailable ("+strings.Join(cfgReasons, "; ")+").")
	}
	if len(otherReasons) > 0 {
		parts = append(parts, "AI generation failed ("+strings.Join(otherReasons, "; ")+").")
	}
	if len(declined) > 0 && own == "" {
		parts = append(parts, "Showing related video.")
	}
	if len(parts) == 0 {
		return ""
	}
	out := strings.Join(parts, " ")
	if own != "" && !strings.HasSuffix(own, ".") && len(parts) > 1 {
		out = own + ". " + strings.Join(parts[1:], " ")
	}
	return out
}
