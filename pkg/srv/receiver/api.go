/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// go-ncom API
//
// RESTful APIs to read the state of NCOM devices seen by the go-ncom receiver
//
// Terms Of Service:
//
//	Schemes: http
//	BasePath: /api
//	Host: localhost:8010
//	Version: 1.0.0
//	Contact:
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package receiver

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-ncom/pkg/config"
	"jinr.ru/greenlab/go-ncom/pkg/log"
	"jinr.ru/greenlab/go-ncom/pkg/ncom"
)

//go:embed swagger.json
var swaggerJSON []byte

const shutdownTimeout = 5 * time.Second

type ApiServer struct {
	*config.Config
	*mux.Router
	receiver *Receiver
	registry *DeviceRegistry
	spec     *loads.Document
}

// NewApiServer builds the API of receiver. registry may be nil when persistence is off.
func NewApiServer(cfg *config.Config, receiver *Receiver, registry *DeviceRegistry) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.IP, cfg.ApiPort)
	doc, err := loads.Analyzed(swaggerJSON, "")
	if err != nil {
		return nil, ErrInvalidSpec{Err: err}
	}
	s := &ApiServer{
		Config:   cfg,
		receiver: receiver,
		registry: registry,
		spec:     doc,
	}
	s.configureRouter()
	return s, nil
}

// Handler is the router with the swagger document, CORS and access log around it
func (s *ApiServer) Handler() http.Handler {
	var h http.Handler = s.Router
	h = middleware.Redoc(middleware.RedocOpts{
		BasePath: "/",
		Path:     "docs",
		SpecURL:  "/swagger.json",
		Title:    s.spec.Spec().Info.Title,
	}, h)
	h = middleware.Spec("/", s.spec.Raw(), h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "OPTIONS"}),
	)(h)
	return handlers.CombinedLoggingHandler(log.Writer(), h)
}

// Run serves the API until ctx is cancelled
func (s *ApiServer) Run(ctx context.Context) error {
	log.Info("Starting API server: address: %s port: %d", s.Config.IP, s.Config.ApiPort)
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    fmt.Sprintf("%s:%d", s.Config.IP, s.Config.ApiPort),
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Not found
// swagger:response notFound
type RespNotFound struct {
	// in:body
	Body struct {
		// HTTP status code 404 - Not Found
		Code int `json:"code"`
	}
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:operation GET /devices devices getDevices
	// ---
	// summary: Return a list of devices the receiver has seen
	// responses:
	//   "200":
	//     description: Device list
	subRouter.HandleFunc("/devices", s.handleDevices()).Methods("GET")
	// swagger:operation GET /devices/{ip} devices getDevice
	// ---
	// summary: Return the full state of a device
	// responses:
	//   "404":
	//     "$ref": "#/responses/notFound"
	subRouter.HandleFunc("/devices/{ip}", s.handleDevice(func(ss *Session) interface{} {
		return ss.Snapshot()
	})).Methods("GET")
	subRouter.HandleFunc("/devices/{ip}/nav", s.handleDevice(func(ss *Session) interface{} {
		return ss.Nav()
	})).Methods("GET")
	subRouter.HandleFunc("/devices/{ip}/status", s.handleDevice(func(ss *Session) interface{} {
		return ss.Status()
	})).Methods("GET")
	subRouter.HandleFunc("/devices/{ip}/connection", s.handleDevice(func(ss *Session) interface{} {
		return ss.Connection()
	})).Methods("GET")
	subRouter.HandleFunc("/channels", s.handleChannels()).Methods("GET")
	// swagger:operation GET /registry registry getRegistry
	// ---
	// summary: Return the devices stored in the device registry
	// responses:
	//   "404":
	//     "$ref": "#/responses/notFound"
	subRouter.HandleFunc("/registry", s.handleRegistry()).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func (s *ApiServer) handleDevices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling devices request")
		devices := []DeviceSummary{}
		for _, snap := range s.receiver.Snapshots() {
			devices = append(devices, snap.Summary())
		}
		writeJSON(w, devices)
	}
}

func (s *ApiServer) handleDevice(view func(*Session) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := mux.Vars(r)["ip"]
		log.Debug("Handling device request: device: %s path: %s", ip, r.URL.Path)
		session, ok := s.receiver.Session(ip)
		if !ok {
			http.Error(w, ErrDeviceNotFound{Address: ip}.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, view(session))
	}
}

func (s *ApiServer) handleChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels := []int{}
		for _, ch := range ncom.Channels() {
			channels = append(channels, int(ch))
		}
		writeJSON(w, channels)
	}
}

func (s *ApiServer) handleRegistry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling registry request")
		if s.registry == nil {
			http.Error(w, "Device registry is disabled", http.StatusNotFound)
			return
		}
		devices, err := s.registry.GetAllDeviceDescriptions()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, devices)
	}
}
