package devserver_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bizpulse/bizdash/internal/api"
	"github.com/bizpulse/bizdash/internal/dashboard"
	"github.com/bizpulse/bizdash/internal/devserver"
	"github.com/bizpulse/bizdash/internal/session"
)

func TestDevserver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Devserver Suite")
}

var _ = Describe("Server", func() {
	var (
		ts     *httptest.Server
		client *http.Client
	)

	BeforeEach(func() {
		store, err := devserver.OpenStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Seed()).To(Succeed())

		tokens := devserver.NewTokenIssuer("test-secret", time.Hour)
		srv := devserver.NewServer(store, tokens, slog.Default())
		ts = httptest.NewServer(srv.Router())
		client = ts.Client()
	})

	AfterEach(func() {
		ts.Close()
	})

	login := func(email, password string) (string, *http.Response) {
		form := url.Values{"username": {email}, "password": {password}}
		resp, err := client.PostForm(ts.URL+"/api/v1/auth/login", form)
		Expect(err).NotTo(HaveOccurred())
		if resp.StatusCode != http.StatusOK {
			return "", resp
		}
		var body struct {
			AccessToken string `json:"access_token"`
		}
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		resp.Body.Close()
		return body.AccessToken, resp
	}

	get := func(token, path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1"+path, nil)
		Expect(err).NotTo(HaveOccurred())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}

	Describe("login", func() {
		It("exchanges seeded credentials for a bearer token", func() {
			form := url.Values{"username": {"admin@bizpulse.local"}, "password": {"password"}}
			resp, err := client.PostForm(ts.URL+"/api/v1/auth/login", form)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				AccessToken string `json:"access_token"`
				TokenType   string `json:"token_type"`
				User        struct {
					Email    string `json:"email"`
					RoleName string `json:"role_name"`
				} `json:"user"`
			}
			decode(resp, &body)
			Expect(body.AccessToken).NotTo(BeEmpty())
			Expect(body.TokenType).To(Equal("bearer"))
			Expect(body.User.RoleName).To(Equal("Admin"))
		})

		It("rejects a wrong password", func() {
			_, resp := login("admin@bizpulse.local", "wrong")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("rejects unknown accounts with the same status as wrong passwords", func() {
			_, resp := login("ghost@bizpulse.local", "password")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("registration", func() {
		It("creates a Staff account, never an elevated one", func() {
			payload := `{"email":"new@bizpulse.local","password":"hunter2","full_name":"New Person"}`
			resp, err := client.Post(ts.URL+"/api/v1/auth/register", "application/json", strings.NewReader(payload))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var body struct {
				User struct {
					RoleName string `json:"role_name"`
				} `json:"user"`
			}
			decode(resp, &body)
			Expect(body.User.RoleName).To(Equal("Staff"))
		})

		It("conflicts on an already-registered email", func() {
			payload := `{"email":"staff@bizpulse.local","password":"hunter2"}`
			resp, err := client.Post(ts.URL+"/api/v1/auth/register", "application/json", strings.NewReader(payload))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		})
	})

	Describe("authentication gate", func() {
		It("rejects requests without a token", func() {
			resp := get("", "/auth/me")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("rejects garbage tokens", func() {
			resp := get("not-a-jwt", "/auth/me")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("serves the caller's profile with a valid token", func() {
			token, _ := login("manager@bizpulse.local", "password")

			resp := get(token, "/auth/me")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var profile struct {
				Email    string `json:"email"`
				RoleName string `json:"role_name"`
			}
			decode(resp, &profile)
			Expect(profile.Email).To(Equal("manager@bizpulse.local"))
			Expect(profile.RoleName).To(Equal("Manager"))
		})
	})

	Describe("role gate on the admin aggregate", func() {
		It("forbids Staff", func() {
			token, _ := login("staff@bizpulse.local", "password")
			resp := get(token, "/admin/dashboard")
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("forbids Manager", func() {
			token, _ := login("manager@bizpulse.local", "password")
			resp := get(token, "/admin/dashboard")
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("serves Admin the cross-module aggregate", func() {
			token, _ := login("admin@bizpulse.local", "password")

			resp := get(token, "/admin/dashboard")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				KPIs map[string]float64 `json:"kpis"`
			}
			decode(resp, &body)
			Expect(body.KPIs).To(HaveKey("total_revenue_30d"))
			Expect(body.KPIs).To(HaveKey("net_profit_30d"))
		})
	})

	Describe("personal aggregate", func() {
		It("is available to every role", func() {
			for _, email := range []string{"admin@bizpulse.local", "manager@bizpulse.local", "staff@bizpulse.local"} {
				token, _ := login(email, "password")

				resp := get(token, "/auth/dashboard")
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var body struct {
					KPIs map[string]float64 `json:"kpis"`
				}
				decode(resp, &body)
				Expect(body.KPIs).To(HaveKey("total_revenue_30d"))
				Expect(body.KPIs).NotTo(HaveKey("net_profit_30d"))
			}
		})
	})

	Describe("assistant endpoint", func() {
		post := func(token, query string) *http.Response {
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/ai/query",
				strings.NewReader(`{"query":"`+query+`"}`))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := client.Do(req)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		It("answers a low-stock question with rows and the backing query", func() {
			token, _ := login("staff@bizpulse.local", "password")

			resp := post(token, "which products are low stock?")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Summary  string           `json:"summary"`
				SQLQuery string           `json:"sql_query"`
				Results  []map[string]any `json:"results"`
			}
			decode(resp, &body)
			Expect(body.Summary).NotTo(BeEmpty())
			Expect(body.SQLQuery).To(ContainSubstring("reorder_level"))
			Expect(body.Results).To(HaveLen(2))
		})

		It("rejects questions it cannot map, with an explanatory summary", func() {
			token, _ := login("staff@bizpulse.local", "password")

			resp := post(token, "what is the meaning of life")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			var body struct {
				Summary string `json:"summary"`
			}
			decode(resp, &body)
			Expect(body.Summary).To(ContainSubstring("could not map"))
		})
	})

	Describe("end to end through the client stack", func() {
		It("falls the dashboard back to the personal aggregate for Staff", func() {
			store := session.NewStore()
			httpClient := api.NewClient(ts.URL+"/api/v1", store, slog.Default())
			auth := api.NewAuthClient(httpClient)

			loginResp, err := auth.Login(context.Background(), "staff@bizpulse.local", "password")
			Expect(err).NotTo(HaveOccurred())
			store.Set(loginResp.Principal())

			agg := dashboard.NewAggregator(api.NewAdminClient(httpClient), auth, store, slog.Default())
			model, source := agg.Load(context.Background())

			Expect(source).To(Equal(dashboard.SourcePersonal))
			Expect(model.KPI("total_revenue_30d")).To(BeNumerically(">", 0))
			Expect(model.KPI("net_profit_30d")).To(BeZero())
		})

		It("serves Admin the privileged aggregate", func() {
			store := session.NewStore()
			httpClient := api.NewClient(ts.URL+"/api/v1", store, slog.Default())
			auth := api.NewAuthClient(httpClient)

			loginResp, err := auth.Login(context.Background(), "admin@bizpulse.local", "password")
			Expect(err).NotTo(HaveOccurred())
			store.Set(loginResp.Principal())

			agg := dashboard.NewAggregator(api.NewAdminClient(httpClient), auth, store, slog.Default())
			model, source := agg.Load(context.Background())

			Expect(source).To(Equal(dashboard.SourceAdmin))
			Expect(model.KPI("net_profit_30d")).NotTo(BeZero())
			Expect(model.RecentOrders).NotTo(BeEmpty())
		})
	})
})
