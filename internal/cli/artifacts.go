package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yunchaoli/cablerig/pkg/pipeline"
)

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	output    string // output file (single format) or base path (multiple)
	cacheHit  bool
}

// writeArtifacts writes rendered artifacts to disk, one file per format.
// A single format with an explicit output path is written as-is; multiple
// formats share a base path and get their format as extension.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output)

	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			printWarning("no %s artifact produced", format)
			continue
		}

		path := base + "." + format
		if p.output != "" && len(p.formats) == 1 && !hasFormatExt(p.output) {
			path = p.output
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path. If output is empty it defaults to
// "rig"; a known format extension is stripped so multiple outputs can share it.
func basePath(output string) string {
	if output == "" {
		return "rig"
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// hasFormatExt reports whether path ends in a known format extension.
func hasFormatExt(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return pipeline.ValidFormats[ext]
}
