package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/config"
	"github.com/lmsweb/portal/internal/handlers"
	"github.com/lmsweb/portal/internal/middleware"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/repositories"
	"github.com/lmsweb/portal/internal/services"
	"github.com/lmsweb/portal/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// jwtSecret signs the fake backend tokens unless TEST_JWT_SECRET is set
var jwtSecret = "integration-secret"

type account struct {
	user     models.User
	password string
}

type storedCourse struct {
	course   models.Course
	enrolled map[int64]bool
}

// lmsBackend is an in-memory stand-in for the LMS REST backend
type lmsBackend struct {
	mu        sync.Mutex
	accounts  map[string]account
	courses   map[int64]*storedCourse
	completed map[int64]map[int64]bool // user -> lesson -> done
	uploads   []string
	nextID    int64
}

func newLMSBackend() *lmsBackend {
	b := &lmsBackend{
		accounts: map[string]account{
			"sam@lms.io":  {user: models.User{ID: 1, Username: "sam", Email: "sam@lms.io", Role: auth.RoleStudent}, password: "student1"},
			"ines@lms.io": {user: models.User{ID: 2, Username: "ines", Email: "ines@lms.io", Role: auth.RoleInstructor}, password: "instruct1"},
			"root@lms.io": {user: models.User{ID: 3, Username: "root", Email: "root@lms.io", Role: auth.RoleAdmin}, password: "admin123"},
		},
		courses:   map[int64]*storedCourse{},
		completed: map[int64]map[int64]bool{},
		nextID:    100,
	}
	b.courses[1] = &storedCourse{
		course: models.Course{
			ID: 1, Title: "Go Basics", Description: "From zero to goroutines", Approved: true,
			Instructor: &models.UserSummary{ID: 2, Username: "ines"},
			Lessons: []models.Lesson{
				{ID: 13, Title: "Channels", ContentType: models.ContentTypeVideo, ContentURL: "https://cdn/ch.mp4", LessonOrder: 3},
				{ID: 11, Title: "Intro", ContentType: models.ContentTypeText, ContentURL: "# Hello", LessonOrder: 1},
				{ID: 12, Title: "Slides", ContentType: models.ContentTypePDF, ContentURL: "https://cdn/s.pdf", LessonOrder: 2},
			},
		},
		enrolled: map[int64]bool{},
	}
	return b
}

func (b *lmsBackend) token(t *testing.T, u models.User) string {
	claims := jwt.MapClaims{
		"sub":  fmt.Sprint(u.ID),
		"role": string(u.Role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// caller resolves the bearer token to an account, answering 401 when it cannot
func (b *lmsBackend) caller(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return []byte(jwtSecret), nil })
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return models.User{}, false
	}
	sub, _ := claims.GetSubject()
	for _, a := range b.accounts {
		if fmt.Sprint(a.user.ID) == sub {
			return a.user, true
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	return models.User{}, false
}

func (b *lmsBackend) routes(t *testing.T) http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a, ok := b.accounts[req.Email]
		if !ok || a.password != req.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Bad credentials"})
			return
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{Token: b.token(t, a.user), Role: a.user.Role})
	})

	r.Get("/api/student/courses", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []models.Course{}
		for id := int64(1); id <= b.nextID; id++ {
			if c, ok := b.courses[id]; ok && c.course.Approved {
				out = append(out, c.course)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Post("/api/student/enroll/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		c := b.courses[parseInt(chi.URLParam(r, "id"))]
		switch {
		case c == nil:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
		case c.enrolled[u.ID]:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Already enrolled"})
		default:
			c.enrolled[u.ID] = true
			writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Enrolled"})
		}
	})

	r.Get("/api/student/my-courses", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []models.EnrolledCourse{}
		for id := int64(1); id <= b.nextID; id++ {
			c, ok := b.courses[id]
			if !ok || !c.enrolled[u.ID] {
				continue
			}
			done := 0
			for _, l := range c.course.Lessons {
				if b.completed[u.ID][l.ID] {
					done++
				}
			}
			out = append(out, models.EnrolledCourse{ID: id, Title: c.course.Title, TotalLessons: len(c.course.Lessons), CompletedLessons: done})
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/api/student/courses/{id}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		c := b.courses[parseInt(chi.URLParam(r, "id"))]
		if c == nil || !c.enrolled[u.ID] {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "You are not enrolled in this course"})
			return
		}
		writeJSON(w, http.StatusOK, b.studentCourse(u.ID, c.course))
	})

	r.Post("/api/student/lessons/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.completed[u.ID] == nil {
			b.completed[u.ID] = map[int64]bool{}
		}
		b.completed[u.ID][parseInt(chi.URLParam(r, "id"))] = true
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Lesson completed"})
	})

	r.Post("/api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := b.caller(w, r); !ok {
			return
		}
		f, fh, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "No file", http.StatusBadRequest)
			return
		}
		defer f.Close()
		_, _ = io.Copy(io.Discard, f)
		b.mu.Lock()
		b.uploads = append(b.uploads, fh.Filename)
		b.mu.Unlock()
		_, _ = fmt.Fprintf(w, "✅ File uploaded successfully: https://files.lms.test/%s", fh.Filename)
	})

	r.Post("/api/instructor/courses", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(w, r)
		if !ok {
			return
		}
		var sub models.CourseSubmission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid course"})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		id := b.nextID
		course := models.Course{ID: id, Title: sub.Title, Description: sub.Description, Instructor: &models.UserSummary{ID: u.ID, Username: u.Username}}
		for i, l := range sub.Lessons {
			course.Lessons = append(course.Lessons, models.Lesson{ID: id*10 + int64(i), Title: l.Title, ContentType: l.ContentType, ContentURL: l.ContentURL, LessonOrder: l.LessonOrder})
		}
		b.courses[id] = &storedCourse{course: course, enrolled: map[int64]bool{}}
		writeJSON(w, http.StatusCreated, models.CreatedCourse{ID: id})
	})

	r.Get("/api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := b.caller(w, r); !ok {
			return
		}
		out := []models.User{}
		for _, email := range []string{"sam@lms.io", "ines@lms.io", "root@lms.io"} {
			out = append(out, b.accounts[email].user)
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/api/admin/courses/pending", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := b.caller(w, r); !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []models.Course{}
		for id := int64(1); id <= b.nextID; id++ {
			if c, ok := b.courses[id]; ok && !c.course.Approved {
				out = append(out, c.course)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Put("/api/admin/courses/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := b.caller(w, r); !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		c := b.courses[parseInt(chi.URLParam(r, "id"))]
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
			return
		}
		c.course.Approved = true
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Approved"})
	})

	return r
}

// studentCourse applies the backend's linear unlock rule for one student
func (b *lmsBackend) studentCourse(userID int64, c models.Course) models.StudentCourse {
	out := models.StudentCourse{ID: c.ID, Title: c.Title, Description: c.Description}
	lessons := append([]models.Lesson(nil), c.Lessons...)
	for i := 1; i < len(lessons); i++ {
		for j := i; j > 0 && lessons[j].LessonOrder < lessons[j-1].LessonOrder; j-- {
			lessons[j], lessons[j-1] = lessons[j-1], lessons[j]
		}
	}
	open := true
	for _, l := range lessons {
		done := b.completed[userID][l.ID]
		out.Lessons = append(out.Lessons, models.LessonView{
			ID: l.ID, Title: l.Title, ContentType: l.ContentType, ContentURL: l.ContentURL, LessonOrder: l.LessonOrder,
			Completed: done, Accessible: open,
		})
		if !done {
			open = false
		}
	}
	return out
}

func parseInt(s string) int64 {
	var id int64
	_, _ = fmt.Sscan(s, &id)
	return id
}

// setupPortal wires the portal the way cmd/portal does, against the fake backend
func setupPortal(t *testing.T) (http.Handler, *lmsBackend) {
	t.Helper()
	cfg, err := config.LoadTestConfig()
	require.NoError(t, err)
	if cfg.Session.JWTSecret != "" {
		jwtSecret = cfg.Session.JWTSecret
	}

	backendState := newLMSBackend()
	server := httptest.NewServer(backendState.routes(t))
	t.Cleanup(server.Close)

	logger := zap.NewNop()
	parser := auth.NewTokenParser(jwtSecret)
	backend := repositories.NewBackend(server.URL, 5*time.Second, logger)

	lessonComposer := composer.NewComposer(repositories.NewUploadRepository(backend), logger)
	authSvc := services.NewAuthService(repositories.NewAuthRepository(backend), parser, logger)
	studentSvc := services.NewStudentService(repositories.NewStudentRepository(backend), logger)
	instructorSvc := services.NewInstructorService(repositories.NewCourseRepository(backend), lessonComposer, logger)
	adminSvc := services.NewAdminService(repositories.NewAdminRepository(backend), logger)
	dispatcher := services.NewDispatcher(adminSvc, instructorSvc, logger)

	renderer, err := views.NewRenderer()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestSizeLimitMiddleware(cfg.Upload.MaxSizeBytes))
	r.Use(middleware.SessionMiddleware(parser, cfg.Session.CookieName, logger))
	handlers.NewAuthHandler(authSvc, handlers.SessionOptions{CookieName: cfg.Session.CookieName}, renderer, logger).RegisterRoutes(r)
	handlers.NewStudentHandler(studentSvc, renderer, logger).RegisterRoutes(r)
	handlers.NewInstructorHandler(instructorSvc, cfg.Upload.MaxSizeBytes, renderer, logger).RegisterRoutes(r)
	handlers.NewAdminHandler(adminSvc, dispatcher, renderer, logger).RegisterRoutes(r)

	return r, backendState
}

func do(t *testing.T, router http.Handler, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)))
	req.Header.Set("Content-Type", "application/json")
	w := do(t, router, req, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestIntegration_StudentProgression(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	router, _ := setupPortal(t)
	token := login(t, router, "sam@lms.io", "student1")

	// catalog is public
	w := do(t, router, httptest.NewRequest(http.MethodGet, "/api/courses", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Go Basics")

	w = do(t, router, httptest.NewRequest(http.MethodPost, "/api/student/enroll/1", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, httptest.NewRequest(http.MethodPost, "/api/student/enroll/1", nil), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Already enrolled")

	var view struct {
		Course models.StudentCourse `json:"course"`
	}
	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/student/courses/1", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	titles := []string{}
	for _, l := range view.Course.Lessons {
		titles = append(titles, l.Title)
	}
	assert.Equal(t, []string{"Intro", "Slides", "Channels"}, titles)
	assert.Contains(t, w.Body.String(), `"state":"accessible"`)

	// skipping ahead is refused before any backend call
	w = do(t, router, httptest.NewRequest(http.MethodPost, "/api/student/courses/1/lessons/13/complete", nil), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "locked")

	w = do(t, router, httptest.NewRequest(http.MethodPost, "/api/student/courses/1/lessons/11/complete", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Transition struct {
			Completed int64  `json:"completed"`
			Unlocked  *int64 `json:"unlocked"`
		} `json:"transition"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(11), result.Transition.Completed)
	require.NotNil(t, result.Transition.Unlocked)
	assert.Equal(t, int64(12), *result.Transition.Unlocked)

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/student/my-courses", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"progress":{"completed":1,"total":3}`)

	// the rendered course page reflects the same states
	w = do(t, router, httptest.NewRequest(http.MethodGet, "/student/course/1", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "33% Complete (1 / 3)")
	assert.Contains(t, w.Body.String(), "Complete the previous lesson to unlock this one.")
}

func TestIntegration_EnrollRefusedForInstructor(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	router, backend := setupPortal(t)
	token := login(t, router, "ines@lms.io", "instruct1")

	w := do(t, router, httptest.NewRequest(http.MethodPost, "/api/student/enroll/1", nil), token)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), services.EnrollOnlyStudents)
	assert.Empty(t, backend.courses[1].enrolled)
}

func TestIntegration_FormLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	router, _ := setupPortal(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=sam%40lms.io&password=student1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(t, router, req, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard-student", w.Header().Get("Location"))

	next := httptest.NewRequest(http.MethodGet, "/dashboard-student", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	w = do(t, router, next, "")
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=sam%40lms.io&password=wrong"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = do(t, router, req, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password.")
}

func TestIntegration_PublishAndApprove(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	router, backend := setupPortal(t)
	instructorToken := login(t, router, "ines@lms.io", "instruct1")

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fields := map[string]string{
		"title":                  "Concurrency",
		"description":            "Channels in depth",
		"lessonCount":            "2",
		"lessons[0].title":       "Read me",
		"lessons[0].contentType": "text",
		"lessons[0].text":        "Start **here**",
		"lessons[1].title":       "Slides",
		"lessons[1].contentType": "pdf",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="lessons[1].file"; filename="deck.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/instructor/courses", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(t, router, req, instructorToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.CreatedCourse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, []string{"deck.pdf"}, backend.uploads)

	saved := backend.courses[created.ID].course
	require.Len(t, saved.Lessons, 2)
	assert.Equal(t, "Start **here**", saved.Lessons[0].ContentURL)
	assert.Equal(t, "https://files.lms.test/deck.pdf", saved.Lessons[1].ContentURL)
	assert.Equal(t, 2, saved.Lessons[1].LessonOrder)
	assert.False(t, saved.Approved)

	adminToken := login(t, router, "root@lms.io", "admin123")
	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil), adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Concurrency")

	req = httptest.NewRequest(http.MethodPost, "/api/commands", strings.NewReader(fmt.Sprintf(`{"command":"approve-course","courseId":%d}`, created.ID)))
	req.Header.Set("Content-Type", "application/json")
	w = do(t, router, req, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Course approved.")

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/courses", nil), "")
	assert.Contains(t, w.Body.String(), "Concurrency")

	// instructors cannot approve from the admin commands
	req = httptest.NewRequest(http.MethodPost, "/api/commands", strings.NewReader(`{"command":"approve-course","courseId":1}`))
	req.Header.Set("Content-Type", "application/json")
	w = do(t, router, req, instructorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
