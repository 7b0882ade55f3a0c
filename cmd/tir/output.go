package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/benbjohnson/tir"
)

// Output writes command results in the configured format.
type Output struct {
	Format string
	Writer io.Writer
}

// Response is the JSON envelope of every result.
type Response struct {
	Status string      `json:"status"` // "ok" | "invalid"
	Data   interface{} `json:"data,omitempty"`
}

// Value is the JSON form of an integer value.
type Value struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Write outputs text as-is in text mode or data wrapped in a response in
// JSON mode.
func (o *Output) Write(status, text string, data interface{}) error {
	if o.Format == "json" {
		return json.NewEncoder(o.Writer).Encode(Response{Status: status, Data: data})
	}
	_, err := fmt.Fprintln(o.Writer, text)
	return err
}

// Store writes a store, one binding per line in text mode.
func (o *Output) Store(status string, store *tir.Store) error {
	text := ""
	store.ForEach(func(name string, value *tir.ConstantExpr) {
		if text != "" {
			text += "\n"
		}
		text += fmt.Sprintf("%s = %s", name, value)
	})
	return o.Write(status, text, storeJSON(store))
}

func storeJSON(store *tir.Store) map[string]Value {
	m := make(map[string]Value, store.Len())
	store.ForEach(func(name string, value *tir.ConstantExpr) {
		m[name] = valueJSON(value)
	})
	return m
}

func valueJSON(c *tir.ConstantExpr) Value {
	return Value{Type: c.Type().String(), Value: c.Value.String()}
}
