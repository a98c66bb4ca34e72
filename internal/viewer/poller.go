package viewer

import (
	"collaborative-annotation-engine/internal/anchor"
	"collaborative-annotation-engine/internal/annotation"
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is how often an idle view silently refreshes
const DefaultPollInterval = 5 * time.Second

// API is the remote annotation surface the poller drives. *Client satisfies
// it; tests substitute fakes.
type API interface {
	List(ctx context.Context) ([]annotation.AnnotationResponse, error)
	Create(ctx context.Context, req annotation.CreateAnnotationRequest) (*annotation.AnnotationResponse, error)
	Update(ctx context.Context, req annotation.UpdateAnnotationRequest) (*annotation.AnnotationResponse, error)
	Delete(ctx context.Context, annotationID uint64) error
	AddReply(ctx context.Context, annotationID uint64, text string) (*annotation.ReplyResponse, error)
	UpdateReply(ctx context.Context, annotationID, replyID uint64, text string) (*annotation.ReplyResponse, error)
	DeleteReply(ctx context.Context, annotationID, replyID uint64) error
}

// Selection is a raw text selection as captured by the rendering layer
type Selection struct {
	Text        string
	StartIndex  int
	EndIndex    int
	StartOffset int
	EndOffset   int
}

// Poller keeps one document view eventually consistent with the server.
// The server list is authoritative: every silent refresh replaces the local
// list wholesale. User writes go through the same instance so a refresh
// never runs mid-edit.
type Poller struct {
	api      API
	interval time.Duration
	onChange func([]annotation.AnnotationResponse)

	mu          sync.Mutex
	annotations []annotation.AnnotationResponse

	writeInFlight atomic.Bool
	cancel        context.CancelFunc
	done          chan struct{}
}

func NewPoller(api API, interval time.Duration, onChange func([]annotation.AnnotationResponse)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		api:      api,
		interval: interval,
		onChange: onChange,
	}
}

// Start performs the initial blocking load, then begins silent refreshes.
// The initial load's error is surfaced; the view shows it as a loading
// failure.
func (p *Poller) Start(ctx context.Context) error {
	list, err := p.api.List(ctx)
	if err != nil {
		return err
	}
	p.replace(list)

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(runCtx)

	return nil
}

// Stop cancels the refresh loop and waits for it to exit. Any in-flight
// poll's result is discarded.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// Annotations returns a copy of the current local list
func (p *Poller) Annotations() []annotation.AnnotationResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]annotation.AnnotationResponse(nil), p.annotations...)
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// skip the tick while a user write is in flight; the next
			// one picks the refresh back up
			if p.writeInFlight.Load() {
				continue
			}
			p.refresh(ctx)
		}
	}
}

// refresh runs one silent poll. It executes inline in the loop goroutine,
// so two polls can never overlap; the per-poll timeout guarantees a stuck
// request releases the loop before long.
func (p *Poller) refresh(ctx context.Context) {
	pollCtx, cancelPoll := context.WithTimeout(ctx, p.interval)
	defer cancelPoll()

	list, err := p.api.List(pollCtx)
	if err != nil {
		// background refresh degrades silently; next tick retries
		log.Printf("Silent refresh failed: %v", err)
		return
	}

	// the view may have been torn down while the poll was in flight
	if ctx.Err() != nil {
		return
	}

	p.replace(list)
}

// Annotate captures an anchor from the selection and creates the
// annotation. On success the result is prepended locally; the next poll's
// full replace supersedes it either way.
func (p *Poller) Annotate(ctx context.Context, sel Selection, body, kind string) (*annotation.AnnotationResponse, error) {
	if _, err := anchor.New(sel.Text, sel.StartIndex, sel.EndIndex, sel.StartOffset, sel.EndOffset); err != nil {
		return nil, err
	}

	p.writeInFlight.Store(true)
	defer p.writeInFlight.Store(false)

	created, err := p.api.Create(ctx, annotation.CreateAnnotationRequest{
		SelectedText: sel.Text,
		StartIndex:   sel.StartIndex,
		EndIndex:     sel.EndIndex,
		StartOffset:  sel.StartOffset,
		EndOffset:    sel.EndOffset,
		Body:         body,
		Kind:         kind,
	})
	if err != nil {
		return nil, err
	}

	p.prepend(*created)
	return created, nil
}

func (p *Poller) UpdateAnnotation(ctx context.Context, req annotation.UpdateAnnotationRequest) (*annotation.AnnotationResponse, error) {
	p.writeInFlight.Store(true)
	defer p.writeInFlight.Store(false)

	updated, err := p.api.Update(ctx, req)
	if err != nil {
		return nil, err
	}

	p.replaceOne(*updated)
	return updated, nil
}

func (p *Poller) DeleteAnnotation(ctx context.Context, annotationID uint64) error {
	p.writeInFlight.Store(true)
	defer p.writeInFlight.Store(false)

	if err := p.api.Delete(ctx, annotationID); err != nil {
		return err
	}

	p.removeOne(annotationID)
	return nil
}

func (p *Poller) AddReply(ctx context.Context, annotationID uint64, text string) (*annotation.ReplyResponse, error) {
	p.writeInFlight.Store(true)
	defer p.writeInFlight.Store(false)

	reply, err := p.api.AddReply(ctx, annotationID, text)
	if err != nil {
		return nil, err
	}

	p.mutateOne(annotationID, func(a *annotation.AnnotationResponse) {
		a.Replies = append(a.Replies, *reply)
	})
	return reply, nil
}

func (p *Poller) UpdateReply(ctx context.Context, annotationID, replyID uint64, text string) (*annotation.ReplyResponse, error) {
	p.writeInFlight.Store(true)
	defer p.writeInFlight.Store(false)

	reply, err := p.api.UpdateReply(ctx, annotationID, replyID, text)
	if err != nil {
		return nil, err
	}

	p.mutateOne(annotationID, func(a *annotation.AnnotationResponse) {
		for i := range a.Replies {
			if a.Replies[i].ID == replyID {
				a.Replies[i] = *reply
				return
			}
		}
	})
	return reply, nil
}

func (p *Poller) DeleteReply(ctx context.Context, annotationID, replyID uint64) error {
	p.writeInFlight.Store(true)
	defer p.writeInFlight.Store(false)

	if err := p.api.DeleteReply(ctx, annotationID, replyID); err != nil {
		return err
	}

	p.mutateOne(annotationID, func(a *annotation.AnnotationResponse) {
		kept := a.Replies[:0]
		for _, r := range a.Replies {
			if r.ID != replyID {
				kept = append(kept, r)
			}
		}
		a.Replies = kept
	})
	return nil
}

func (p *Poller) replace(list []annotation.AnnotationResponse) {
	p.mu.Lock()
	p.annotations = list
	snap := append([]annotation.AnnotationResponse(nil), p.annotations...)
	p.mu.Unlock()

	p.notify(snap)
}

func (p *Poller) prepend(created annotation.AnnotationResponse) {
	p.mu.Lock()
	for i := range p.annotations {
		if p.annotations[i].ID == created.ID {
			// a poll already delivered it
			p.mu.Unlock()
			return
		}
	}
	p.annotations = append([]annotation.AnnotationResponse{created}, p.annotations...)
	snap := append([]annotation.AnnotationResponse(nil), p.annotations...)
	p.mu.Unlock()

	p.notify(snap)
}

func (p *Poller) replaceOne(updated annotation.AnnotationResponse) {
	p.mutate(func() {
		for i := range p.annotations {
			if p.annotations[i].ID == updated.ID {
				p.annotations[i] = updated
				return
			}
		}
	})
}

func (p *Poller) removeOne(annotationID uint64) {
	p.mutate(func() {
		kept := p.annotations[:0]
		for _, a := range p.annotations {
			if a.ID != annotationID {
				kept = append(kept, a)
			}
		}
		p.annotations = kept
	})
}

func (p *Poller) mutateOne(annotationID uint64, fn func(*annotation.AnnotationResponse)) {
	p.mutate(func() {
		for i := range p.annotations {
			if p.annotations[i].ID == annotationID {
				fn(&p.annotations[i])
				return
			}
		}
	})
}

func (p *Poller) mutate(fn func()) {
	p.mu.Lock()
	fn()
	snap := append([]annotation.AnnotationResponse(nil), p.annotations...)
	p.mu.Unlock()

	p.notify(snap)
}

func (p *Poller) notify(snapshot []annotation.AnnotationResponse) {
	if p.onChange != nil {
		p.onChange(snapshot)
	}
}
