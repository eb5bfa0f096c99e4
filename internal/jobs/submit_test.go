package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/k8s"
)

// fakeSink records every manifest it sees and fails the names it is told to.
type fakeSink struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
}

func (s *fakeSink) CreateJob(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, job.Metadata.Name)
	return s.fail[job.Metadata.Name]
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func submitDescriptors(n int) []Descriptor {
	descs := make([]Descriptor, 0, n)
	for i := 0; i < n; i++ {
		d := manifestDescriptor()
		d.Name = fmt.Sprintf("record-noaa-15-0214-1321-%03d", i+1)
		d.Start = passStart.Add(time.Duration(i) * 100 * time.Minute)
		descs = append(descs, d)
	}
	return descs
}

func TestSubmitAll(t *testing.T) {
	descs := submitDescriptors(5)
	sink := &fakeSink{fail: map[string]error{
		descs[1].Name: fmt.Errorf("create job: %w: already owned", k8s.ErrAlreadyExists),
		descs[3].Name: errors.New("create job: HTTP 502"),
	}}

	res := NewSubmitter(sink, manifestConfig(), discard()).SubmitAll(context.Background(), descs)

	want := Result{Created: 3, AlreadyExists: 1, Failed: 1}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if len(sink.seen) != 5 {
		t.Errorf("sink saw %d manifests, want all 5", len(sink.seen))
	}
}

func TestSubmitAllEmpty(t *testing.T) {
	sink := &fakeSink{}
	res := NewSubmitter(sink, manifestConfig(), discard()).SubmitAll(context.Background(), nil)
	if res != (Result{}) {
		t.Errorf("result = %+v, want zero", res)
	}
	if len(sink.seen) != 0 {
		t.Errorf("sink saw %d manifests, want none", len(sink.seen))
	}
}

func TestSubmitAllSingleWorker(t *testing.T) {
	cfg := manifestConfig()
	cfg.SubmitWorkers = 0 // clamped to one worker

	descs := submitDescriptors(3)
	sink := &fakeSink{}
	res := NewSubmitter(sink, cfg, discard()).SubmitAll(context.Background(), descs)

	if res.Created != 3 {
		t.Errorf("created = %d, want 3", res.Created)
	}
}

func TestSubmitAllManifestContent(t *testing.T) {
	type captured struct {
		namespace string
		image     string
		envCount  int
	}
	var (
		mu   sync.Mutex
		seen []captured
	)
	sink := sinkFunc(func(_ context.Context, job *Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, captured{
			namespace: job.Metadata.Namespace,
			image:     job.Spec.Template.Spec.Containers[0].Image,
			envCount:  len(job.Spec.Template.Spec.Containers[0].Env),
		})
		return nil
	})

	NewSubmitter(sink, manifestConfig(), discard()).SubmitAll(context.Background(), submitDescriptors(2))

	if len(seen) != 2 {
		t.Fatalf("sink saw %d manifests, want 2", len(seen))
	}
	for i, c := range seen {
		if c.namespace != "recordings" || c.image != "henriinc/recorder:latest" || c.envCount != 11 {
			t.Errorf("manifest %d = %+v", i, c)
		}
	}
}

type sinkFunc func(ctx context.Context, job *Job) error

func (f sinkFunc) CreateJob(ctx context.Context, job *Job) error { return f(ctx, job) }
