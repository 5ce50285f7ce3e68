package main

import (
	"sync"

	"github.com/abdulachik/cadavre/internal/source"
	"github.com/gosuri/uiprogress"
)

// progress shows a bar once the total is known. It stays silent when
// disabled, so commands can be scripted.
type progress struct {
	enabled bool

	mu      sync.Mutex
	bar     *uiprogress.Bar
	lastURL string
}

func newProgress(enabled bool) *progress {
	return &progress{enabled: enabled}
}

// start shows a bar of total steps.
func (p *progress) start(total int) {
	if !p.enabled || total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	uiprogress.Start()
	p.bar = uiprogress.AddBar(total)
	p.bar.AppendCompleted()
	p.bar.PrependElapsed()
}

// document advances the bar once per document.
func (p *progress) document(source.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Incr()
	}
}

// file advances the bar when a document comes from a new file.
func (p *progress) file(d source.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil && d.URL != p.lastURL {
		p.lastURL = d.URL
		p.bar.Incr()
	}
}

func (p *progress) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		uiprogress.Stop()
		p.bar = nil
	}
}
