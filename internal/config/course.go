package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

//go:embed courses/default.yaml
var defaultCourse []byte

// LoadCourse reads the course table from path, or the embedded default course
// when path is empty.
func LoadCourse(path string) (domain.Course, error) {
	data := defaultCourse
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return domain.Course{}, fmt.Errorf("read course file: %w", err)
		}
		data = raw
	}
	return ParseCourse(data)
}

// ParseCourse decodes and validates a YAML course table
func ParseCourse(data []byte) (domain.Course, error) {
	var c domain.Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return domain.Course{}, fmt.Errorf("parse course: %w", err)
	}
	if err := ValidateCourse(c); err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

// ValidateCourse reports every problem with the table, not just the first
func ValidateCourse(c domain.Course) error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("course name is required"))
	}
	if len(c.Holes) != domain.HolesPerRound {
		errs = append(errs, fmt.Errorf("course has %d holes, want %d", len(c.Holes), domain.HolesPerRound))
	}

	numbers := make(map[int]bool)
	indexes := make(map[int]bool)
	for i, h := range c.Holes {
		if h.Number < 1 || h.Number > domain.HolesPerRound || numbers[h.Number] {
			errs = append(errs, fmt.Errorf("holes[%d]: bad or duplicate number %d", i, h.Number))
		}
		numbers[h.Number] = true
		if h.Par < 3 || h.Par > 6 {
			errs = append(errs, fmt.Errorf("hole %d: par %d out of range", h.Number, h.Par))
		}
		if h.StrokeIndex < 1 || h.StrokeIndex > domain.HolesPerRound || indexes[h.StrokeIndex] {
			errs = append(errs, fmt.Errorf("hole %d: bad or duplicate stroke index %d", h.Number, h.StrokeIndex))
		}
		indexes[h.StrokeIndex] = true
	}
	return errors.Join(errs...)
}
