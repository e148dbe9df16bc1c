package main

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/instapdf"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// YAMLLoader reads a flat YAML mapping of flag names to values. Keys may
// use dashes or underscores: both "page-size" and "page_size" set --page-size.
func YAMLLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		v, ok := values[flag.Name]
		if !ok {
			v, ok = values[strings.ReplaceAll(flag.Name, "-", "_")]
		}
		if !ok || v == nil {
			return nil, nil
		}
		return configValue(v), nil
	}), nil
}

// configValue turns a decoded YAML value into the string form kong
// parses from the command line.
func configValue(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("name"); name != "" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	return v
}

// validateFlags checks the validate tags of a command struct and reports the
// first failure as EINVALID using the flag name.
func validateFlags(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() == "" {
			return instapdf.Errorf(instapdf.EINVALID, "--%s: failed %s check", fe.Field(), fe.Tag())
		}
		return instapdf.Errorf(instapdf.EINVALID, "--%s: must satisfy %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
	return instapdf.Errorf(instapdf.EINVALID, "%s", err.Error())
}

// RenderOptions converts the layout flags into validated render options.
func (f LayoutFlags) RenderOptions() (instapdf.RenderOptions, error) {
	if err := validateFlags(f); err != nil {
		return instapdf.RenderOptions{}, err
	}

	opts := instapdf.DefaultRenderOptions()
	opts.PageSize = instapdf.PageSize(f.PageSize)
	if f.Landscape {
		opts.Orientation = instapdf.Landscape
	}
	opts.Margins = instapdf.Margins{
		Top:    f.MarginTop,
		Right:  f.MarginRight,
		Bottom: f.MarginBottom,
		Left:   f.MarginLeft,
	}
	opts.Zoom = f.Zoom
	opts.ScriptDelay = f.ScriptDelay
	opts.DisableScripts = f.NoScripts

	if err := opts.Validate(); err != nil {
		return instapdf.RenderOptions{}, err
	}
	return opts, nil
}
