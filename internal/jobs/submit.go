package jobs

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
	"github.com/HenrINC/sat-cluster-predictor/internal/k8s"
)

// Sink accepts one manifest per descriptor and creates the corresponding
// unit of work.
type Sink interface {
	CreateJob(ctx context.Context, job *Job) error
}

// KubernetesSink submits manifests through the cluster REST client.
type KubernetesSink struct {
	client *k8s.Client
}

func NewKubernetesSink(client *k8s.Client) *KubernetesSink {
	return &KubernetesSink{client: client}
}

func (s *KubernetesSink) CreateJob(ctx context.Context, job *Job) error {
	return s.client.CreateJob(ctx, job.Metadata.Namespace, job)
}

// Result tallies one submission sweep.
type Result struct {
	Created       int `json:"created"`
	AlreadyExists int `json:"already_exists"`
	Failed        int `json:"failed"`
}

// Submitter pushes descriptors into a sink on a bounded worker pool.
// Submissions are independent: every descriptor is attempted regardless of
// how its siblings fared, and name collisions count as benign.
type Submitter struct {
	sink Sink
	cfg  config.JobsConfig
	log  *log.Logger
}

func NewSubmitter(sink Sink, cfg config.JobsConfig, logger *log.Logger) *Submitter {
	return &Submitter{sink: sink, cfg: cfg, log: logger}
}

func (s *Submitter) SubmitAll(ctx context.Context, descs []Descriptor) Result {
	workers := s.cfg.SubmitWorkers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	var res Result

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, d := range descs {
		wg.Add(1)
		go func(d Descriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := s.sink.CreateJob(ctx, Manifest(d, s.cfg))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				res.Created++
				s.log.Printf("jobs: created %s (sleeps %ds, max elev %.1f)", d.Name, d.SleepSeconds, d.MaxElevation)
			case errors.Is(err, k8s.ErrAlreadyExists):
				res.AlreadyExists++
				s.log.Printf("jobs: %s already exists, leaving it alone", d.Name)
			default:
				res.Failed++
				s.log.Printf("jobs: creating %s failed: %v", d.Name, err)
			}
		}(d)
	}
	wg.Wait()

	return res
}
