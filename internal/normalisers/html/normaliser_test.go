package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	assert.Equal(t, []string{"html"}, New().Kinds())
}

func TestNormalise_TitleAndText(t *testing.T) {
	page := `<html><head><title>Tide &amp; Time</title><style>p{}</style></head>
<body><h1>Harbour</h1><p>The ferry   leaves at <b>six</b>.</p>
<script>alert(1)</script><!-- note --><p>Fog&nbsp;rolls in.<br>Lamps are lit.</p></body></html>`

	result, err := New().Normalise("page.html", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, "Tide & Time", result.Title)
	assert.Equal(t, "html", result.Format)
	assert.Equal(t, "Harbour\n\nThe ferry leaves at six.\n\nFog rolls in.\nLamps are lit.", result.Text)
}

func TestNormalise_NoTitle(t *testing.T) {
	result, err := New().Normalise("frag.html", []byte("<div>just a fragment</div>"))
	require.NoError(t, err)

	assert.Empty(t, result.Title)
	assert.Equal(t, "just a fragment", result.Text)
}

func TestNormalise_Empty(t *testing.T) {
	result, err := New().Normalise("empty.html", nil)
	require.NoError(t, err)

	assert.Empty(t, result.Text)
}

func TestStripHTML_DropsInvisibleElements(t *testing.T) {
	in := `<noscript>enable js</noscript><svg><text>icon</text></svg><p>visible</p>`

	assert.Equal(t, "visible", stripHTML(in))
}
