package dataset

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"strconv"
	"strings"
)

type sparse struct {
	label  float64
	values map[int]float64
}

// ReadLibSVM loads a dataset from LIBSVM formatted lines:
//
//	<label> [qid:<id>] <index>:<value> ... [# comment]
//
// Indices start at one. Features missing from a line are zero. Blank lines
// and lines starting with # are ignored.
func ReadLibSVM(reader io.Reader) (*Dataset, error) {
	var (
		examples []sparse
		dim      int
	)
	s := bufio.NewScanner(reader)
	line := 0
	for s.Scan() {
		line++
		l := s.Text()

		// {line} # [comment]
		if i := strings.Index(l, "#"); i >= 0 {
			l = l[:i]
		}
		l = strings.TrimSpace(l)
		if len(l) == 0 {
			continue
		}

		b := strings.Fields(l)
		label, err := strconv.ParseFloat(b[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: label", line)
		}

		ex := sparse{label: label, values: make(map[int]float64)}
		for _, v := range b[1:] {
			f := strings.SplitN(v, ":", 2)
			if len(f) != 2 {
				return nil, errors.Errorf("line %d: malformed feature %q", line, v)
			}
			if f[0] == "qid" {
				continue
			}
			id, err := strconv.Atoi(f[0])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: feature index", line)
			}
			if id < 1 {
				return nil, errors.Errorf("line %d: feature index %d must be positive", line, id)
			}
			score, err := strconv.ParseFloat(f[1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: feature value", line)
			}
			ex.values[id] = score
			if id > dim {
				dim = id
			}
		}
		examples = append(examples, ex)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	features := make([][]float64, len(examples))
	labels := make([]float64, len(examples))
	for i, ex := range examples {
		features[i] = make([]float64, dim)
		for id, v := range ex.values {
			features[i][id-1] = v
		}
		labels[i] = ex.label
	}
	return New(features, labels)
}

// WriteLibSVM writes every example of a provider in LIBSVM format, omitting zero valued features.
func WriteLibSVM(writer io.Writer, p Provider) error {
	w := bufio.NewWriter(writer)
	for i := 0; i < p.Len(); i++ {
		var sb strings.Builder
		sb.WriteString(strconv.FormatFloat(p.Label(i), 'g', -1, 64))
		for j, v := range p.Features(i) {
			if v == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf(" %d:%s", j+1, strconv.FormatFloat(v, 'g', -1, 64)))
		}
		sb.WriteByte('\n')
		if _, err := w.WriteString(sb.String()); err != nil {
			return err
		}
	}
	return w.Flush()
}
