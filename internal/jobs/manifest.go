package jobs

import (
	"math"
	"strconv"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
)

// Minimal batch/v1 Job document, only the fields the predictor writes.

type Job struct {
	APIVersion string     `json:"apiVersion"`
	Kind       string     `json:"kind"`
	Metadata   ObjectMeta `json:"metadata"`
	Spec       JobSpec    `json:"spec"`
}

type ObjectMeta struct {
	Name      string            `json:"name,omitempty"`
	Namespace string            `json:"namespace,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type JobSpec struct {
	BackoffLimit            *int32          `json:"backoffLimit,omitempty"`
	TTLSecondsAfterFinished *int32          `json:"ttlSecondsAfterFinished,omitempty"`
	Template                PodTemplateSpec `json:"template"`
}

type PodTemplateSpec struct {
	Metadata ObjectMeta `json:"metadata,omitempty"`
	Spec     PodSpec    `json:"spec"`
}

type PodSpec struct {
	RestartPolicy string      `json:"restartPolicy,omitempty"`
	Containers    []Container `json:"containers"`
	Volumes       []Volume    `json:"volumes,omitempty"`
}

type Container struct {
	Name         string               `json:"name"`
	Image        string               `json:"image"`
	Env          []EnvVar             `json:"env,omitempty"`
	Resources    ResourceRequirements `json:"resources,omitempty"`
	VolumeMounts []VolumeMount        `json:"volumeMounts,omitempty"`
}

type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ResourceRequirements struct {
	Requests map[string]string `json:"requests,omitempty"`
	Limits   map[string]string `json:"limits,omitempty"`
}

type Volume struct {
	Name                  string     `json:"name"`
	PersistentVolumeClaim *PVCSource `json:"persistentVolumeClaim,omitempty"`
}

type PVCSource struct {
	ClaimName string `json:"claimName"`
}

type VolumeMount struct {
	Name      string `json:"name"`
	MountPath string `json:"mountPath"`
}

const recordingsVolume = "recordings"

// Manifest materializes the batch/v1 Job for a descriptor. Recorder pods
// get the pass parameters as environment variables and, when a claim is
// configured, the shared recordings volume.
func Manifest(d Descriptor, cfg config.JobsConfig) *Job {
	backoff := cfg.BackoffLimit
	ttl := cfg.TTLSeconds
	slug := Slug(d.Satellite)

	container := Container{
		Name:  "recorder",
		Image: cfg.Image,
		Env:   envVars(d),
		Resources: ResourceRequirements{
			Requests: resourceList(cfg.Resources.RequestMemory, cfg.Resources.RequestCPU),
			Limits:   resourceList(cfg.Resources.LimitMemory, cfg.Resources.LimitCPU),
		},
	}

	pod := PodSpec{RestartPolicy: "Never"}
	if cfg.Claim != "" {
		container.VolumeMounts = []VolumeMount{{Name: recordingsVolume, MountPath: cfg.MountPath}}
		pod.Volumes = []Volume{{
			Name:                  recordingsVolume,
			PersistentVolumeClaim: &PVCSource{ClaimName: cfg.Claim},
		}}
	}
	pod.Containers = []Container{container}

	return &Job{
		APIVersion: "batch/v1",
		Kind:       "Job",
		Metadata: ObjectMeta{
			Name:      d.Name,
			Namespace: d.Namespace,
			Labels: map[string]string{
				"app":        "satellite-recorder",
				"satellite":  slug,
				"managed-by": "predictor",
			},
		},
		Spec: JobSpec{
			BackoffLimit:            &backoff,
			TTLSecondsAfterFinished: &ttl,
			Template: PodTemplateSpec{
				Metadata: ObjectMeta{
					Labels: map[string]string{
						"app":       "satellite-recorder",
						"satellite": slug,
						"pass-date": d.Start.UTC().Format("2006-01-02"),
					},
				},
				Spec: pod,
			},
		},
	}
}

// envVars encodes the scheduling contract consumed by the recorder image.
// Order is stable for readable kubectl describe output.
func envVars(d Descriptor) []EnvVar {
	return []EnvVar{
		{Name: "SATELLITE_NAME", Value: d.Satellite},
		{Name: "NORAD_ID", Value: strconv.Itoa(d.NoradID)},
		{Name: "FREQUENCY", Value: formatFloat(d.FrequencyMHz)},
		{Name: "START_TIME", Value: d.Start.UTC().Format(time.RFC3339)},
		{Name: "END_TIME", Value: d.End.UTC().Format(time.RFC3339)},
		{Name: "DURATION", Value: strconv.Itoa(d.DurationSeconds)},
		{Name: "MAX_ELEVATION", Value: formatFloat(math.Round(d.MaxElevation*100) / 100)},
		{Name: "SLEEP_SECONDS", Value: strconv.FormatInt(d.SleepSeconds, 10)},
		{Name: "GROUND_STATION_LAT", Value: formatFloat(d.Station.Latitude)},
		{Name: "GROUND_STATION_LON", Value: formatFloat(d.Station.Longitude)},
		{Name: "GROUND_STATION_ALT", Value: formatFloat(d.Station.Altitude)},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func resourceList(memory, cpu string) map[string]string {
	list := make(map[string]string, 2)
	if memory != "" {
		list["memory"] = memory
	}
	if cpu != "" {
		list["cpu"] = cpu
	}
	if len(list) == 0 {
		return nil
	}
	return list
}
