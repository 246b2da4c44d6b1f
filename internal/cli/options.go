// Package cli 实现 labelctl 命令行客户端
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/transport"
)

// 输出格式
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Options 全局选项
type Options struct {
	Server  string
	Token   string
	Project int64
	Output  string

	out    io.Writer
	client *http.Client
	log    *slog.Logger
}

func (o *Options) transport() *transport.HTTPTransport {
	opts := []transport.Option{transport.WithLogger(o.log)}
	if o.Token != "" {
		opts = append(opts, transport.WithToken(o.Token))
	}
	if o.client != nil {
		opts = append(opts, transport.WithHTTPClient(o.client))
	}
	return transport.NewHTTPTransport(o.Server, opts...)
}

func (o *Options) requireProject() error {
	if o.Project <= 0 {
		return errs.InvalidArgument("--project is required")
	}
	return nil
}

// render 按输出格式写出 v
func (o *Options) render(v any) error {
	switch o.Output {
	case OutputJSON, "":
		enc := json.NewEncoder(o.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(o.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errs.InvalidArgument("unknown output format %q", o.Output)
	}
}

// decodeJSON 解码服务端负载；整数保持精确，再转成 yaml 可直接输出的类型
func decodeJSON(data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}
