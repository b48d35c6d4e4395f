// Package output provides different formats of output for cross-validation results.
package output

import (
	"bytes"
	"encoding/csv"
	"github.com/hscells/crossval"
	"github.com/mailru/easyjson"
	"github.com/pkg/errors"
	"strconv"
)

// Formatter turns a result into text.
type Formatter func(r *crossval.Result) (string, error)

// PlainFormatter outputs <mean>+-<std dev>.
func PlainFormatter(r *crossval.Result) (string, error) {
	return r.String(), nil
}

// JsonFormatter outputs the versioned JSON form of a result.
func JsonFormatter(r *crossval.Result) (string, error) {
	b, err := easyjson.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CsvFormatter outputs the score of every run, followed by the mean and standard deviation.
func CsvFormatter(r *crossval.Result) (string, error) {
	b := bytes.NewBufferString("")
	w := csv.NewWriter(b)
	w.Write([]string{"Run", r.Criterion()})
	for i, s := range r.RunScores() {
		w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(s, 'f', -1, 64)})
	}
	w.Write([]string{"Mean", strconv.FormatFloat(r.Mean(), 'f', -1, 64)})
	w.Write([]string{"StdDev", strconv.FormatFloat(r.StdDev(), 'f', -1, 64)})
	w.Flush()
	return b.String(), w.Error()
}

// Formatters are the formatters that can be looked up by name.
var Formatters = map[string]Formatter{
	"plain": PlainFormatter,
	"json":  JsonFormatter,
	"csv":   CsvFormatter,
}

// LookupFormatter finds a formatter by name.
func LookupFormatter(name string) (Formatter, error) {
	if f, ok := Formatters[name]; ok {
		return f, nil
	}
	return nil, errors.Errorf("unknown output format %q", name)
}
