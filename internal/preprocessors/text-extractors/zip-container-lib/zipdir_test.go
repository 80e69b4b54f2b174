// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package zipcontainerlib

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-architect/internal/diagnostic"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
)

type member struct {
	name   string
	body   string
	method uint16
}

func buildZip(t *testing.T, comment string, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		f, err := w.CreateHeader(&zip.FileHeader{Name: m.name, Method: m.method})
		require.NoError(t, err)
		_, err = f.Write([]byte(m.body))
		require.NoError(t, err)
	}
	if comment != "" {
		require.NoError(t, w.SetComment(comment))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadDirectory(t *testing.T) {
	data := buildZip(t, "",
		member{name: "[Content_Types].xml", body: "<Types/>", method: zip.Store},
		member{name: "word/document.xml", body: strings.Repeat("<w:p><w:t>Invoice</w:t></w:p>", 50), method: zip.Deflate},
	)

	dir, diags := ReadDirectory(data)
	require.Empty(t, diags)
	assert.Equal(t, 2, dir.Len())
	assert.Equal(t, 2, dir.Declared())
	assert.Equal(t, []string{"[Content_Types].xml", "word/document.xml"}, dir.Names())

	stored, ok := dir.Entry("[Content_Types].xml")
	require.True(t, ok)
	assert.Equal(t, MethodStore, stored.Compression)
	assert.Equal(t, "<Types/>", string(data[stored.DataOffset:stored.DataOffset+int(stored.CompressedSize)]))

	deflated, ok := dir.Entry("word/document.xml")
	require.True(t, ok)
	assert.Equal(t, MethodDeflate, deflated.Compression)
	assert.Less(t, deflated.CompressedSize, deflated.UncompressedSize)

	body, err := dir.Open("word/document.xml", inflatelib.NewNative(0))
	require.NoError(t, err)
	assert.Equal(t, int(deflated.UncompressedSize), len(body))
	assert.True(t, strings.HasPrefix(string(body), "<w:p><w:t>Invoice</w:t></w:p>"))
}

func TestReadDirectoryWithArchiveComment(t *testing.T) {
	data := buildZip(t, strings.Repeat("c", 2000), member{name: "a.txt", body: "alpha", method: zip.Store})

	dir, diags := ReadDirectory(data)
	require.Empty(t, diags)
	body, err := dir.Open("a.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(body))
}

func TestReadDirectoryNotAnArchive(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("short"), bytes.Repeat([]byte("not a zip "), 100)} {
		dir, diags := ReadDirectory(data)
		assert.Equal(t, 0, dir.Len())
		require.Len(t, diags, 1)
		assert.Equal(t, diagnostic.StageZip, diags[0].Stage)
	}
}

func TestReadDirectoryStopsAtCorruptEntry(t *testing.T) {
	data := buildZip(t, "",
		member{name: "one.txt", body: "1", method: zip.Store},
		member{name: "two.txt", body: "2", method: zip.Store},
		member{name: "three.txt", body: "3", method: zip.Store},
	)

	sig := []byte("PK\x01\x02")
	first := bytes.Index(data, sig)
	require.GreaterOrEqual(t, first, 0)
	second := first + len(sig) + bytes.Index(data[first+len(sig):], sig)
	data[second] = 'X'

	dir, diags := ReadDirectory(data)
	assert.Equal(t, []string{"one.txt"}, dir.Names())
	assert.Equal(t, 3, dir.Declared())
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "after 1 of 3 entries")
}

func TestReadDirectoryDecodesCodePage437Names(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.CreateHeader(&zip.FileHeader{Name: "\x81ber.txt", Method: zip.Store, NonUTF8: true})
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dir, _ := ReadDirectory(buf.Bytes())
	_, ok := dir.Entry("über.txt")
	assert.True(t, ok)
}

func TestOpenErrors(t *testing.T) {
	data := buildZip(t, "", member{name: "doc.xml", body: strings.Repeat("x", 100), method: zip.Deflate})
	dir, _ := ReadDirectory(data)

	_, err := dir.Open("missing.xml", inflatelib.NewNative(0))
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = dir.Open("doc.xml", inflatelib.Unavailable{})
	assert.ErrorIs(t, err, inflatelib.ErrUnavailable)
}

func TestMatch(t *testing.T) {
	data := buildZip(t, "",
		member{name: "xl/worksheets/sheet2.xml", body: "b", method: zip.Store},
		member{name: "xl/worksheets/_rels/sheet2.xml.rels", body: "r", method: zip.Store},
		member{name: "xl/worksheets/sheet10.xml", body: "a", method: zip.Store},
		member{name: "xl/sharedStrings.xml", body: "s", method: zip.Store},
	)
	dir, _ := ReadDirectory(data)

	assert.Equal(t, []string{"xl/worksheets/sheet10.xml", "xl/worksheets/sheet2.xml"}, dir.Match("xl/worksheets/", ".xml"))
}
