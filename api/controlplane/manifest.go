package controlplane

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Default limits applied when a manifest omits the limits block.
const (
	DefaultMemoryLimit = 512 * 1024 * 1024
	DefaultCpuShares   = 1024
	DefaultPidsLimit   = 1000
)

type (
	// ManifestYAML mirrors the weaver.yml file handed to the create command.
	ManifestYAML struct {
		Name        string                     `yaml:"name"`
		Description string                     `yaml:"description"`
		Version     string                     `yaml:"version"`
		Services    map[string]ManifestService `yaml:"services"`
	}

	ManifestService struct {
		Language    string            `yaml:"language"`
		Port        int               `yaml:"port"`
		Source      string            `yaml:"source"`
		Command     string            `yaml:"command"`
		Environment map[string]string `yaml:"environment"`
		Limits      *ManifestLimits   `yaml:"limits"`
	}

	ManifestLimits struct {
		Memory    string `yaml:"memory"`
		CpuShares int    `yaml:"cpu_shares"`
		PidsLimit int    `yaml:"pids_limit"`
	}
)

func (m *ManifestYAML) Validate() error {
	if m.Name == "" {
		return errors.New("manifest missing required field: name")
	}

	if len(m.Services) == 0 {
		return errors.New("manifest must define at least one service")
	}

	for name, service := range m.Services {
		if service.Language == "" {
			return errors.Errorf("service %s missing required field: language", name)
		}

		if service.Source == "" {
			return errors.Errorf("service %s missing required field: source", name)
		}
	}

	return nil
}

// ToCreateRequest converts the manifest to the create deployment body,
// filling in default limits where the manifest leaves them out. Services are
// emitted in name order so the request body is stable.
func (m *ManifestYAML) ToCreateRequest() (*CreateDeploymentRequestBody, error) {
	err := m.Validate()
	if err != nil {
		return nil, err
	}

	version := m.Version
	if version == "" {
		version = "1.0.0"
	}

	serviceNames := make([]string, 0, len(m.Services))
	for name := range m.Services {
		serviceNames = append(serviceNames, name)
	}

	sort.Strings(serviceNames)

	services := make([]*ServiceDefinition, 0, len(serviceNames))

	for _, name := range serviceNames {
		service := m.Services[name]

		limits := &ResourceLimits{
			Memory:    DefaultMemoryLimit,
			CpuShares: DefaultCpuShares,
			PidsLimit: DefaultPidsLimit,
		}

		if service.Limits != nil {
			if service.Limits.Memory != "" {
				limits.Memory, err = ParseMemory(service.Limits.Memory)
				if err != nil {
					return nil, errors.Wrapf(err, "service %s", name)
				}
			}

			if service.Limits.CpuShares != 0 {
				limits.CpuShares = service.Limits.CpuShares
			}

			if service.Limits.PidsLimit != 0 {
				limits.PidsLimit = service.Limits.PidsLimit
			}
		}

		services = append(services, &ServiceDefinition{
			Name:        name,
			Language:    service.Language,
			Port:        service.Port,
			Source:      service.Source,
			Command:     service.Command,
			Environment: service.Environment,
			Limits:      limits,
		})
	}

	return &CreateDeploymentRequestBody{
		ApplicationName: m.Name,
		Description:     m.Description,
		Version:         version,
		Services:        services,
	}, nil
}

// ParseMemory parses a human memory size ("512M", "1G", "262144") into bytes.
func ParseMemory(value string) (int64, error) {
	trimmed := strings.TrimSpace(strings.ToUpper(value))
	if trimmed == "" {
		return 0, errors.New("empty memory size")
	}

	multiplier := int64(1)

	trimmed = strings.TrimSuffix(trimmed, "B")

	switch {
	case strings.HasSuffix(trimmed, "K"):
		multiplier = 1024
		trimmed = strings.TrimSuffix(trimmed, "K")
	case strings.HasSuffix(trimmed, "M"):
		multiplier = 1024 * 1024
		trimmed = strings.TrimSuffix(trimmed, "M")
	case strings.HasSuffix(trimmed, "G"):
		multiplier = 1024 * 1024 * 1024
		trimmed = strings.TrimSuffix(trimmed, "G")
	}

	amount, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid memory size %q", value)
	}

	if amount <= 0 {
		return 0, errors.Errorf("memory size must be positive, got %q", value)
	}

	if amount > math.MaxInt64/multiplier {
		return 0, errors.Errorf("memory size %q is too large", value)
	}

	return amount * multiplier, nil
}
