// Package filetype classifies project files by extension.
package filetype

import (
	"path/filepath"
	"strings"
)

// Kind is the primary category of a file
type Kind string

const (
	KindImage Kind = "image"
	KindModel Kind = "model"
	KindText  Kind = "text"
	KindOther Kind = "other"
)

// ImageExtensions are files displayed as-is
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// ModelExtensions are files the thumbnail tool can render to an image
var ModelExtensions = []string{".stl", ".3mf"}

// TextExtensions are files whose notes are their content
var TextExtensions = []string{".txt", ".md", ".json", ".toml", ".yaml", ".yml", ".ini"}

var (
	imageExts = extSet(ImageExtensions)
	modelExts = extSet(ModelExtensions)
	textExts  = extSet(TextExtensions)
)

func extSet(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		m[strings.ToLower(ext)] = true
	}
	return m
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsImage reports whether path is an image file
func IsImage(path string) bool {
	return imageExts[ext(path)]
}

// IsModel reports whether path is a model the thumbnail tool can render
func IsModel(path string) bool {
	return modelExts[ext(path)]
}

// IsText reports whether path is an editable plain-text file
func IsText(path string) bool {
	return textExts[ext(path)]
}

// IsDisplayable reports whether an image can be shown for path
func IsDisplayable(path string) bool {
	return IsImage(path) || IsModel(path)
}

// Classify returns the primary kind of path
func Classify(path string) Kind {
	switch {
	case IsImage(path):
		return KindImage
	case IsModel(path):
		return KindModel
	case IsText(path):
		return KindText
	default:
		return KindOther
	}
}
