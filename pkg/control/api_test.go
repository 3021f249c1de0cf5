/*
   BasTap - ZX Spectrum BASIC tokenizer & tape tools
   Copyright (c) 2026, the BasTap authors

   This file is part of BasTap.

   BasTap is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   BasTap is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with BasTap. If not, see <http://www.gnu.org/licenses/>.
*/

package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapeworks/bastap/pkg/basic"
	"github.com/tapeworks/bastap/pkg/tape"
)

func TestAPIStatus(t *testing.T) {

	a := &api{}
	rec := httptest.NewRecorder()
	a.status(rec, httptest.NewRequest("GET", "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Contains(t, status["formats"], "tap")
	assert.Contains(t, status["formats"], "mdr")
}

func TestAPIConvert(t *testing.T) {

	a := &api{}
	rec := httptest.NewRecorder()
	a.convert(rec, httptest.NewRequest("POST", "/convert?name=TEST",
		strings.NewReader(`10 PRINT "HI"`)))

	require.Equal(t, http.StatusOK, rec.Code)

	opts := basic.DefaultOptions()
	res, err := basic.Assemble(`10 PRINT "HI"`, opts)
	require.NoError(t, err)

	var want bytes.Buffer
	form, err := tape.NewFormat("tap")
	require.NoError(t, err)
	require.NoError(t,
		form.Write(&want, "TEST", basic.NoAutoStart, res.Buffer))

	assert.Equal(t, want.Bytes(), rec.Body.Bytes())
	assert.Equal(t, "application/octet-stream",
		rec.Header().Get("Content-Type"))
}

func TestAPIConvertWarningsHeader(t *testing.T) {

	a := &api{}
	rec := httptest.NewRecorder()
	a.convert(rec, httptest.NewRequest("POST", "/convert",
		strings.NewReader("10 STOP\n10 STOP\n")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t,
		rec.Header().Get("X-Conversion-Warnings"), "duplicate")
}

func TestAPIConvertErrors(t *testing.T) {

	// invalid start parameter
	a := &api{}
	rec := httptest.NewRecorder()
	a.convert(rec, httptest.NewRequest("POST", "/convert?start=abc",
		strings.NewReader("10 STOP\n")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// source that cannot be tokenized
	rec = httptest.NewRecorder()
	a.convert(rec, httptest.NewRequest("POST", "/convert",
		strings.NewReader("10 PRINT \"unterminated\n")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// unsupported target format
	rec = httptest.NewRecorder()
	a.convert(rec, httptest.NewRequest("POST", "/convert?format=wav",
		strings.NewReader("10 STOP\n")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPIConvertMdr(t *testing.T) {

	a := &api{}
	rec := httptest.NewRecorder()
	a.convert(rec, httptest.NewRequest("POST", "/convert?format=mdr&name=m",
		strings.NewReader("10 STOP\n")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 137923, rec.Body.Len())
}

func TestAPIDetokenize(t *testing.T) {

	opts := basic.DefaultOptions()
	res, err := basic.Assemble("10 LET a=5\n20 GO TO 10\n", opts)
	require.NoError(t, err)

	var image bytes.Buffer
	form, err := tape.NewFormat("tap")
	require.NoError(t, err)
	require.NoError(t,
		form.Write(&image, "x", basic.NoAutoStart, res.Buffer))

	a := &api{}
	rec := httptest.NewRecorder()
	a.detokenize(rec, httptest.NewRequest("POST", "/detokenize", &image))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10 LET A=5\n20 GO TO 10\n", rec.Body.String())
}

func TestAPIDetokenizeBadContainer(t *testing.T) {

	a := &api{}
	rec := httptest.NewRecorder()
	a.detokenize(rec, httptest.NewRequest(
		"POST", "/detokenize?format=tzx&strict=true",
		strings.NewReader("NotATape!")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
