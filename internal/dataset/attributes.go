package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/cts-trends/internal/crime"
)

// NameFields are the attribute keys that may carry the neighbourhood name,
// in lookup order.
var NameFields = []string{"NEIGHBOURHOOD_NAME", "AREA_NAME"}

// nameOf returns the first non-empty name field, matching keys exactly and
// then case-insensitively.
func nameOf(fields map[string]any) string {
	for _, key := range NameFields {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	for _, key := range NameFields {
		for k, v := range fields {
			if !strings.EqualFold(k, key) {
				continue
			}
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// recordFrom builds a record from one attribute row. ok is false when the
// row carries no name.
func recordFrom(fields map[string]any) (rec *crime.Record, ok bool, err error) {
	name := nameOf(fields)
	if name == "" {
		return nil, false, nil
	}
	rec, err = crime.ParseRecord(name, fields)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// rowCollector accumulates records and counts rows skipped for lacking a name.
type rowCollector struct {
	source  string
	records []*crime.Record
	skipped int
}

func (c *rowCollector) add(fields map[string]any) error {
	rec, ok, err := recordFrom(fields)
	if err != nil {
		return eris.Wrapf(err, "dataset: %s row %d", c.source, len(c.records)+c.skipped+1)
	}
	if !ok {
		c.skipped++
		return nil
	}
	c.records = append(c.records, rec)
	return nil
}

func (c *rowCollector) done() []*crime.Record {
	if c.skipped > 0 {
		zap.L().Warn("dataset: skipped attribute rows without a name field",
			zap.String("source", c.source),
			zap.Int("skipped", c.skipped),
		)
	}
	return c.records
}

// DecodeAttributes reads attribute records from path in the given format.
func DecodeAttributes(ctx context.Context, path string, format Format) ([]*crime.Record, error) {
	switch format {
	case FormatGeoJSON:
		features, err := DecodeGeometry(path, FormatGeoJSON)
		if err != nil {
			return nil, err
		}
		return recordsFromFeatures(features)
	case FormatJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: open attributes")
		}
		defer f.Close() //nolint:errcheck
		return DecodeJSON(ctx, f)
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: open attributes")
		}
		defer f.Close() //nolint:errcheck
		return DecodeCSV(ctx, f)
	case FormatXLSX:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read attributes")
		}
		return DecodeXLSX(b)
	default:
		return nil, eris.Errorf("dataset: unsupported attribute format for %s", path)
	}
}

// recordsFromFeatures reads attribute records from feature properties.
func recordsFromFeatures(features []Feature) ([]*crime.Record, error) {
	out := make([]*crime.Record, 0, len(features))
	for _, f := range features {
		rec, err := crime.ParseRecord(f.Name, f.Properties)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: feature %s", f.Name)
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeJSONArray decodes a JSON array streaming, sending each element to a channel.
// Both channels are closed when processing completes.
func decodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)
		decoder.UseNumber()

		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}

		delim, ok := tok.(json.Delim)
		if !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for decoder.More() {
			var item T
			if err := decoder.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "json: decode element")
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := decoder.Token(); err != nil && err != io.EOF {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// DecodeJSON reads a JSON array of attribute objects.
func DecodeJSON(ctx context.Context, r io.Reader) ([]*crime.Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items, errs := decodeJSONArray[map[string]any](ctx, r)
	c := rowCollector{source: "json"}
	for item := range items {
		if err := c.add(item); err != nil {
			return nil, err
		}
	}
	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "dataset: decode json attributes")
	}
	return c.done(), nil
}

// streamCSV reads a header row and then sends every data row, keyed by
// header, to a channel. Both channels are closed when processing completes.
func streamCSV(ctx context.Context, r io.Reader) (<-chan map[string]any, <-chan error) {
	rowCh := make(chan map[string]any, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		header, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "csv: read header")
			return
		}
		for i, h := range header {
			header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}

		for {
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			row := make(map[string]any, len(header))
			for i, field := range record {
				if i < len(header) {
					row[header[i]] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- row:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// DecodeCSV reads attribute rows from a CSV table with a header row.
func DecodeCSV(ctx context.Context, r io.Reader) ([]*crime.Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows, errs := streamCSV(ctx, r)
	c := rowCollector{source: "csv"}
	for row := range rows {
		if err := c.add(row); err != nil {
			return nil, err
		}
	}
	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "dataset: decode csv attributes")
	}
	return c.done(), nil
}

// DecodeXLSX reads attribute rows from the first sheet of a workbook. The
// first row is the header.
func DecodeXLSX(b []byte) ([]*crime.Record, error) {
	f, err := xlsx.OpenBinary(b)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	sheet := f.Sheets[0]

	c := rowCollector{source: "xlsx"}
	var header []string
	for i, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := rowToStrings(row)
		if i == 0 {
			header = cells
			continue
		}
		fields := make(map[string]any, len(header))
		for j, v := range cells {
			if j < len(header) {
				fields[strings.TrimSpace(header[j])] = strings.TrimSpace(v)
			}
		}
		if err := c.add(fields); err != nil {
			return nil, err
		}
	}
	return c.done(), nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
