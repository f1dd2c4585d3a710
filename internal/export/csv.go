// Package export renders the full search result set as a downloadable CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

// Header is the fixed first row of every export.
var Header = []string{
	"Titulo",
	"Empresa",
	"Ubicacion",
	"Tipo Empleo",
	"Remoto",
	"URL",
	"Plataforma",
	"Fecha Publicado",
}

// WriteJobsCSV writes all jobs to w in their given order, one row per
// posting. Output for the same input is byte-identical across calls.
func WriteJobsCSV(w io.Writer, jobs []types.Job) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, job := range jobs {
		remote := "No"
		if job.IsRemote {
			remote = "Sí"
		}
		row := []string{
			job.Title,
			job.Company,
			job.Location,
			job.JobType,
			remote,
			job.JobURL,
			job.Source,
			job.DatePosted,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// JobsCSV renders the export in memory, ready to attach to a message.
func JobsCSV(jobs []types.Job) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJobsCSV(&buf, jobs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename names the attachment after the searched country and result count.
func Filename(country string, total int) string {
	return fmt.Sprintf("empleos_%s_%d_total.csv", country, total)
}
