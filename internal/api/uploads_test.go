package api

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngFile is an in-memory multipart.File.
type pngFile struct {
	*bytes.Reader
}

func (pngFile) Close() error { return nil }

// pngHeader builds a minimal PNG whose IHDR declares the given pixel
// dimensions. DecodeConfig only reads the header, so no pixel data is
// needed.
func pngHeader(width, height int) pngFile {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(ihdr)))
	buf.Write(length[:])

	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(chunk))
	buf.Write(crc[:])

	return pngFile{bytes.NewReader(buf.Bytes())}
}

func TestCheckPanoramaFileAccepts(t *testing.T) {
	width, height, err := checkPanoramaFile(pngHeader(8192, 4096))
	require.NoError(t, err)
	assert.Equal(t, 8192, width)
	assert.Equal(t, 4096, height)
}

func TestCheckPanoramaFileRejectsNonImage(t *testing.T) {
	file := pngFile{bytes.NewReader([]byte("definitely not an image payload"))}
	_, _, err := checkPanoramaFile(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JPEG or PNG")
}

func TestCheckPanoramaFileRejectsWrongAspect(t *testing.T) {
	_, _, err := checkPanoramaFile(pngHeader(9000, 6000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2:1 aspect ratio")
}

func TestCheckPanoramaFileRejectsTooSmall(t *testing.T) {
	_, _, err := checkPanoramaFile(pngHeader(4000, 2000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func formContext(t *testing.T, form url.Values) *gin.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestParseDefaultOrientationCanonicalizes(t *testing.T) {
	c := formContext(t, url.Values{
		"default_yaw":   {"270"},
		"default_pitch": {"120"},
	})
	yaw, pitch, err := parseDefaultOrientation(c)
	require.NoError(t, err)
	assert.InDelta(t, -90.0, yaw, 1e-12)
	assert.InDelta(t, 90.0, pitch, 1e-12)
}

func TestParseDefaultOrientationDefaultsToZero(t *testing.T) {
	c := formContext(t, url.Values{})
	yaw, pitch, err := parseDefaultOrientation(c)
	require.NoError(t, err)
	assert.Zero(t, yaw)
	assert.Zero(t, pitch)
}

func TestParseDefaultOrientationRejectsGarbage(t *testing.T) {
	c := formContext(t, url.Values{"default_yaw": {"sideways"}})
	_, _, err := parseDefaultOrientation(c)
	assert.Error(t, err)
}
