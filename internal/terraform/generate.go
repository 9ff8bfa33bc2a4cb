package terraform

import (
	"crypto/rand"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/liftoff-sh/liftoff/internal/model"
)

//go:embed templates/*.tf.tmpl
var templateFiles embed.FS

// GenerateOptions are the options for generating a Terraform configuration.
type GenerateOptions struct {
	Dir          string
	ProjectID    string
	ProjectName  string
	Region       string
	DatabaseTier string
	Plan         model.Plan
	// Suffix is appended to resource names to avoid collisions with earlier
	// runs. Generated when empty.
	Suffix string
}

// templateData is what the .tf templates render from.
type templateData struct {
	ProjectID    string
	ProjectName  string
	Region       string
	DatabaseTier string
	Suffix       string
	Services     []templateService
}

type templateService struct {
	// Name is the Cloud Run service name (hyphenated).
	Name string
	// TFName is the Terraform resource name (underscored).
	TFName string
}

// Generate writes main.tf, versions.tf and variables.tf into the target
// directory and returns the resource name suffix used.
func Generate(opts GenerateOptions) (suffix string, err error) {
	if opts.Dir == "" {
		return "", fmt.Errorf("target dir is required: %w", model.ErrNotValid)
	}
	if err := opts.Plan.Validate(); err != nil {
		return "", fmt.Errorf("invalid plan: %w", err)
	}

	suffix = opts.Suffix
	if suffix == "" {
		suffix, err = randomSuffix(6)
		if err != nil {
			return "", fmt.Errorf("could not generate suffix: %w", err)
		}
	}

	data := templateData{
		ProjectID:    opts.ProjectID,
		ProjectName:  opts.ProjectName,
		Region:       opts.Region,
		DatabaseTier: opts.DatabaseTier,
		Suffix:       suffix,
	}
	for _, svc := range opts.Plan.Services {
		data.Services = append(data.Services, templateService{
			Name:   svc.Name,
			TFName: strings.ReplaceAll(svc.Name, "-", "_"),
		})
	}

	tmpl, err := template.ParseFS(templateFiles, "templates/*.tf.tmpl")
	if err != nil {
		return "", fmt.Errorf("could not parse templates: %w", err)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return "", fmt.Errorf("could not create terraform dir: %w", err)
	}

	for _, name := range []string{"main.tf", "versions.tf", "variables.tf"} {
		f, err := os.Create(filepath.Join(opts.Dir, name))
		if err != nil {
			return "", fmt.Errorf("could not create %s: %w", name, err)
		}

		err = tmpl.ExecuteTemplate(f, name+".tmpl", data)
		closeErr := f.Close()
		if err != nil {
			return "", fmt.Errorf("could not render %s: %w", name, err)
		}
		if closeErr != nil {
			return "", fmt.Errorf("could not write %s: %w", name, closeErr)
		}
	}

	return suffix, nil
}

const suffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = suffixCharset[int(b)%len(suffixCharset)]
	}
	return string(buf), nil
}
