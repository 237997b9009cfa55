package oss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allowedImages = []string{"image/jpeg", "image/png", "image/webp"}

// 最小 PNG 文件头
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestDetectImage(t *testing.T) {
	mt, err := DetectImage(pngHeader, allowedImages)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt.String())
	assert.Equal(t, ".png", mt.Extension())

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	mt, err = DetectImage(jpeg, allowedImages)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt.String())
}

func TestDetectImage_Rejects(t *testing.T) {
	_, err := DetectImage([]byte("#!/bin/sh\necho hi\n"), allowedImages)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	gif := []byte("GIF89a\x01\x00\x01\x00")
	_, err = DetectImage(gif, allowedImages)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestGetURL_CDN(t *testing.T) {
	c := &Client{cdnDomain: "cdn.example.com", bucketName: "media"}
	assert.Equal(t, "https://cdn.example.com/profiles/1/x.png", c.GetURL("profiles/1/x.png"))
}
