package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error
	user          *models.User
	userErr       error
	setPassErr    error

	lastSignUpUsername string
	lastSignUpEmail    string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, email, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpEmail = email
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) GetUser(id int) (*models.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	if m.user != nil {
		return m.user, nil
	}
	return &models.User{ID: id, Username: "tester"}, nil
}
func (m *mockAuth) SetPassword(username, password string) error {
	return m.setPassErr
}

type mockExpenses struct {
	addID     int
	addErr    error
	getResp   models.Expense
	getErr    error
	updateErr error
	deleteErr error

	lastUserID int
	lastID     int
	lastInput  service.ExpenseInput
	addCalls   int
}

func (m *mockExpenses) Add(ctx context.Context, userID int, in service.ExpenseInput) (int, error) {
	m.addCalls++
	m.lastUserID = userID
	m.lastInput = in
	return m.addID, m.addErr
}
func (m *mockExpenses) Get(ctx context.Context, userID, id int) (models.Expense, error) {
	m.lastUserID, m.lastID = userID, id
	return m.getResp, m.getErr
}
func (m *mockExpenses) Update(ctx context.Context, userID, id int, in service.ExpenseInput) error {
	m.lastUserID, m.lastID, m.lastInput = userID, id, in
	return m.updateErr
}
func (m *mockExpenses) Delete(ctx context.Context, userID, id int) error {
	m.lastUserID, m.lastID = userID, id
	return m.deleteErr
}

type mockReports struct {
	report    service.Report
	reportErr error
	csv       string
	filename  string
	exportErr error
	importRes service.ImportResult
	importErr error

	dashboardCalls int
	lastQuery      service.ExpenseQuery
	lastFilename   string
	lastUpload     string
}

func (m *mockReports) Dashboard(ctx context.Context, userID int, q service.ExpenseQuery) (service.Report, error) {
	m.dashboardCalls++
	m.lastQuery = q
	return m.report, m.reportErr
}
func (m *mockReports) Categories(ctx context.Context, userID int) ([]string, error) {
	return m.report.Categories, m.reportErr
}
func (m *mockReports) Export(ctx context.Context, userID int, q service.ExpenseQuery, w io.Writer) (string, error) {
	m.lastQuery = q
	if m.exportErr != nil {
		return "", m.exportErr
	}
	_, err := io.WriteString(w, m.csv)
	return m.filename, err
}
func (m *mockReports) Import(ctx context.Context, userID int, filename string, r io.Reader) (service.ImportResult, error) {
	m.lastFilename = filename
	b, _ := io.ReadAll(r)
	m.lastUpload = string(b)
	return m.importRes, m.importErr
}

type mockMaintenance struct {
	n   int
	err error
}

func (m *mockMaintenance) NormalizeCategories(ctx context.Context, userID int) (int, error) {
	return m.n, m.err
}

// ---- Shared Test Helpers ----

func newMockService() (*service.Service, *mockAuth, *mockExpenses, *mockReports, *mockMaintenance) {
	auth := &mockAuth{parseID: 1, genTokenToken: "tok"}
	exp := &mockExpenses{}
	rep := &mockReports{report: sampleReport()}
	mnt := &mockMaintenance{}
	return &service.Service{Authorization: auth, Expenses: exp, Reports: rep, Maintenance: mnt}, auth, exp, rep, mnt
}

func sampleReport() service.Report {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	p := service.ResolvePeriod(service.PeriodMonth, "", now)
	expenses := []models.Expense{
		{ID: 2, UserID: 1, Amount: 60, Category: "Games", ExpenseType: models.TypeNonEssential, Date: now},
		{ID: 1, UserID: 1, Amount: 140, Category: "Rent", ExpenseType: models.TypeEssential, Date: now.Add(-time.Hour)},
	}
	return service.Report{
		Period:     p,
		Summary:    service.Summarize(expenses, p),
		Expenses:   expenses,
		Categories: []string{"Games", "Rent"},
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, Options{Location: time.UTC})
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func sessionCookieFor(token string) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: token}
}
