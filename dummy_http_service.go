/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

// RecordedRequest is a request received by FormService
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// FormService is an in memory stand-in of the form endpoint
type FormService struct {
	mu       *sync.Mutex
	sleep    time.Duration
	forms    []FormSubmission
	requests []RecordedRequest
	// getStatus and getBody override GET response when getStatus != 0
	getStatus int
	getBody   []byte
}

func NewFormService(sleep time.Duration) *FormService {
	return &FormService{
		mu:       &sync.Mutex{},
		sleep:    sleep,
		forms:    make([]FormSubmission, 0),
		requests: make([]RecordedRequest, 0),
	}
}

// SetGetResponse makes every GET return status and raw body, status 0 restores stored forms
func (s *FormService) SetGetResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getStatus = status
	s.getBody = []byte(body)
}

func (s *FormService) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]RecordedRequest, len(s.requests))
	copy(res, s.requests)
	return res
}

func (s *FormService) Forms() []FormSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]FormSubmission, len(s.forms))
	copy(res, s.forms)
	return res
}

func (s *FormService) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.POST("/"+FormPath, s.submit)
	r.GET("/"+FormPath, s.list)
	return r
}

func (s *FormService) record(c *gin.Context, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Body:   body,
	})
}

func (s *FormService) submit(c *gin.Context) {
	time.Sleep(s.sleep)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.record(c, body)
	var f FormSubmission
	if err := jsoniter.Unmarshal(body, &f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if f.UserID == "" || f.Title == "" || f.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "UserID, Title and Text are required"})
		return
	}
	s.mu.Lock()
	s.forms = append(s.forms, f)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (s *FormService) list(c *gin.Context) {
	time.Sleep(s.sleep)
	s.record(c, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getStatus != 0 {
		c.Data(s.getStatus, "application/json", s.getBody)
		return
	}
	c.JSON(http.StatusOK, s.forms)
}

// RunTestServer serves FormService on target until the server is closed
func RunTestServer(target string, svc *FormService) *http.Server {
	srv := &http.Server{
		Addr:    target,
		Handler: svc.Handler(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Print(err)
		}
	}()
	return srv
}
