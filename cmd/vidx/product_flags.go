package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidx/internal/config"
	"vidx/internal/queue"
)

// productFlags collects the listing fields shared by `generate` and
// `queue add`.
type productFlags struct {
	title       string
	category    string
	description string
	language    string
	price       float64
	details     []string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Listing title (required)")
	cmd.Flags().StringVar(&f.category, "category", "", "Listing category, selects the narration voice")
	cmd.Flags().StringVar(&f.description, "description", "", "Listing description (required)")
	cmd.Flags().StringVar(&f.language, "language", "ro", "Script language code")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Listing price")
	cmd.Flags().StringArrayVar(&f.details, "detail", nil, "Structured detail as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
}

func (f *productFlags) jobSpec(images []string) (queue.JobSpec, error) {
	details, err := parseDetails(f.details)
	if err != nil {
		return queue.JobSpec{}, err
	}
	resolved := make([]string, 0, len(images))
	for _, image := range images {
		expanded, err := config.ExpandPath(image)
		if err != nil {
			return queue.JobSpec{}, fmt.Errorf("resolve image path %q: %w", image, err)
		}
		resolved = append(resolved, expanded)
	}
	return queue.JobSpec{
		Title:       strings.TrimSpace(f.title),
		Category:    strings.TrimSpace(f.category),
		Description: strings.TrimSpace(f.description),
		Price:       f.price,
		Language:    strings.TrimSpace(f.language),
		Details:     details,
		Images:      resolved,
	}, nil
}

func parseDetails(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	details := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid detail %q, expected key=value", pair)
		}
		details[key] = strings.TrimSpace(value)
	}
	return details, nil
}
