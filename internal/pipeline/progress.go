package pipeline

import "time"

// Progress tracks per-run accounting. processed counts every input record
// regardless of outcome; succeeded only records that were enriched and
// written; failed covers malformed inputs and enrichment failures past
// all fallbacks. Duplicates count as processed only.
type Progress struct {
	processed int
	succeeded int
	failed    int
	skipped   int
	started   time.Time
}

func NewProgress() *Progress {
	return &Progress{started: time.Now()}
}

func (p *Progress) Processed() { p.processed++ }
func (p *Progress) Succeeded() { p.succeeded++ }
func (p *Progress) Failed()    { p.failed++ }
func (p *Progress) Skipped()   { p.skipped++ }

// Report is the final run summary, emitted even when every item failed.
type Report struct {
	Processed  int           `json:"processed"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Duplicates int           `json:"duplicates"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Throughput float64       `json:"items_per_second"`
}

func (p *Progress) Report() Report {
	elapsed := time.Since(p.started)
	throughput := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		throughput = float64(p.processed) / secs
	}
	return Report{
		Processed:  p.processed,
		Succeeded:  p.succeeded,
		Failed:     p.failed,
		Duplicates: p.skipped,
		Elapsed:    elapsed,
		Throughput: throughput,
	}
}
