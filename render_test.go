package instapdf_test

import (
	"testing"

	"github.com/fwojciec/instapdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOptions_Validate(t *testing.T) {
	t.Parallel()

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, instapdf.DefaultRenderOptions().Validate())
	})

	tests := []struct {
		name   string
		modify func(o *instapdf.RenderOptions)
	}{
		{name: "unknown page size", modify: func(o *instapdf.RenderOptions) { o.PageSize = "B7" }},
		{name: "unknown orientation", modify: func(o *instapdf.RenderOptions) { o.Orientation = "Sideways" }},
		{name: "negative margin", modify: func(o *instapdf.RenderOptions) { o.Margins.Left = -1 }},
		{name: "unsupported encoding", modify: func(o *instapdf.RenderOptions) { o.Encoding = "latin1" }},
		{name: "negative script delay", modify: func(o *instapdf.RenderOptions) { o.ScriptDelay = -1 }},
		{name: "zoom too small", modify: func(o *instapdf.RenderOptions) { o.Zoom = 0 }},
		{name: "zoom too large", modify: func(o *instapdf.RenderOptions) { o.Zoom = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := instapdf.DefaultRenderOptions()
			tt.modify(&opts)

			err := opts.Validate()

			require.Error(t, err)
			assert.Equal(t, instapdf.EINVALID, instapdf.ErrorCode(err))
		})
	}

	t.Run("encoding is case-insensitive", func(t *testing.T) {
		t.Parallel()

		opts := instapdf.DefaultRenderOptions()
		opts.Encoding = "utf-8"

		assert.NoError(t, opts.Validate())
	})
}

func TestPageSize_Dimensions(t *testing.T) {
	t.Parallel()

	w, h, ok := instapdf.PageA4.Dimensions()
	require.True(t, ok)
	assert.InDelta(t, 8.27, w, 0.001)
	assert.InDelta(t, 11.69, h, 0.001)

	_, _, ok = instapdf.PageSize("B7").Dimensions()
	assert.False(t, ok)
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	got := instapdf.DataURI("image/png", []byte("hi"))

	assert.Equal(t, "data:image/png;base64,aGk=", got)
}
