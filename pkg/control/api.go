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
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tapeworks/bastap/pkg/basic"
	"github.com/tapeworks/bastap/pkg/microdrive"
	"github.com/tapeworks/bastap/pkg/tape"
)

//
type APIServer interface {
	Serve() error
	Stop() error
}

//
func NewAPIServer(addr string) APIServer {
	return &api{address: addr}
}

//
type api struct {
	address string
	server  *http.Server
}

//
func (a *api) Serve() error {

	router := mux.NewRouter().StrictSlash(true)

	addRoute(router, "status", "GET", "/status", a.status)
	addRoute(router, "convert", "POST", "/convert", a.convert)
	addRoute(router, "detokenize", "POST", "/detokenize", a.detokenize)

	addr := a.address
	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:8588", a.address)
	}

	log.Infof("BasTap API starts listening on %s", addr)
	a.server = &http.Server{Addr: addr, Handler: router}

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) Stop() error {
	if a.server != nil {
		log.Info("API server stopping...")
		err := a.server.Shutdown(context.Background())
		a.server = nil
		return err
	}
	return nil
}

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"formats": []string{"tap", "tzx", "mdr", "rs232", "raw"},
	})
}

/*
	convert tokenizes the BASIC source in the request body and responds
	with the container bytes. Query parameters: format (tap|tzx|mdr|
	rs232|raw, default tap), name (program name), start (auto start
	line), strict. Warnings travel in the X-Conversion-Warnings header.
*/
func (a *api) convert(w http.ResponseWriter, req *http.Request) {

	src, err := ioutil.ReadAll(req.Body)
	if err != nil {
		handleError(err, http.StatusBadRequest, w)
		return
	}

	opts := basic.DefaultOptions()
	opts.SuppressWarnings = true
	opts.Name = req.URL.Query().Get("name")
	opts.Strict = req.URL.Query().Get("strict") == "true"

	if s := req.URL.Query().Get("start"); s != "" {
		start, err := strconv.Atoi(s)
		if err != nil {
			handleError(fmt.Errorf("invalid start line: %s", s),
				http.StatusBadRequest, w)
			return
		}
		opts.AutoStart = start
	}

	res, err := basic.Assemble(string(src), opts)
	if err != nil {
		handleError(err, http.StatusUnprocessableEntity, w)
		return
	}

	format := req.URL.Query().Get("format")
	if format == "" {
		format = "tap"
	}

	var out bytes.Buffer

	if format == "mdr" {
		cart := microdrive.FormatCartridge(opts.Name)
		if err = microdrive.WriteProgram(
			cart, opts.Name, opts.AutoStart, res.Buffer); err == nil {
			err = microdrive.NewMDR().Write(cart, &out)
		}
	} else {
		var form tape.Writer
		if form, err = tape.NewFormat(format); err == nil {
			err = form.Write(&out, opts.Name, opts.AutoStart, res.Buffer)
		}
	}

	if err != nil {
		handleError(err, http.StatusUnprocessableEntity, w)
		return
	}

	if len(res.Warnings) > 0 {
		w.Header().Set("X-Conversion-Warnings",
			strings.Join(res.Warnings, "; "))
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(out.Bytes())
}

// detokenize parses the container in the request body and responds with
// the reconstructed BASIC source.
func (a *api) detokenize(w http.ResponseWriter, req *http.Request) {

	format := req.URL.Query().Get("format")
	if format == "" {
		format = "tap"
	}
	strict := req.URL.Query().Get("strict") == "true"

	var programs []*tape.Program
	var err error

	if format == "mdr" {
		var cart *microdrive.Cartridge
		if cart, err = microdrive.NewMDR().Read(req.Body, strict); err == nil {
			programs, err = microdrive.Programs(cart)
		}
	} else {
		var form tape.Reader
		if form, err = tape.NewFormat(format); err == nil {
			programs, err = form.Read(req.Body, strict)
		}
	}

	if err != nil {
		handleError(err, http.StatusUnprocessableEntity, w)
		return
	}

	w.Header().Set("Content-Type", "text/plain")

	for _, p := range programs {
		src, err := p.Source()
		if err != nil {
			handleError(err, http.StatusUnprocessableEntity, w)
			return
		}
		fmt.Fprint(w, src)
	}
}

//
func handleError(e error, status int, w http.ResponseWriter) {
	log.Error(e)
	http.Error(w, fmt.Sprintf("%v", e), status)
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}
