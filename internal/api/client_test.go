package api_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bizpulse/bizdash/internal/api"
	"github.com/bizpulse/bizdash/internal/session"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Client Suite")
}

// staticTokens is a TokenSource with a fixed credential.
type staticTokens struct {
	token string
}

func (s staticTokens) Token() (string, bool) {
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

var _ = Describe("Client transport", func() {
	var (
		server   *httptest.Server
		received *http.Request
		status   int
		body     string
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = `{}`
		received = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r.Clone(r.Context())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newAuth := func(tokens api.TokenSource) *api.AuthClient {
		return api.NewAuthClient(api.NewClient(server.URL, tokens, slog.Default()))
	}

	It("attaches the bearer token uniformly", func() {
		body = `{"email":"a@example.com"}`
		_, err := newAuth(staticTokens{token: "tok-123"}).Me(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(received.Header.Get("Authorization")).To(Equal("Bearer tok-123"))
	})

	It("omits the authorization header without a session", func() {
		body = `{"email":"a@example.com"}`
		_, err := newAuth(staticTokens{}).Me(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(received.Header.Get("Authorization")).To(BeEmpty())
	})

	It("surfaces non-2xx responses as typed transport errors", func() {
		status = http.StatusForbidden
		body = `{"detail":"admin only"}`

		_, err := newAuth(staticTokens{token: "t"}).Me(context.Background())

		var apiErr *api.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusForbidden))
		Expect(apiErr.ServerMessage).To(Equal("admin only"))
		Expect(api.IsUnauthorized(err)).To(BeTrue())
	})

	It("does not classify server faults as unauthorized", func() {
		status = http.StatusInternalServerError
		body = `{"message":"boom"}`

		_, err := newAuth(staticTokens{token: "t"}).Me(context.Background())

		Expect(err).To(HaveOccurred())
		Expect(api.IsUnauthorized(err)).To(BeFalse())
	})

	It("reports unreachable servers with a zero status code", func() {
		server.Close()

		_, err := newAuth(staticTokens{token: "t"}).Me(context.Background())

		var apiErr *api.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(BeZero())
	})

	Describe("Login", func() {
		It("posts the OAuth2 password form with the email in the username field", func() {
			body = `{"access_token":"tok","token_type":"bearer","user":{"email":"a@example.com","role_name":"Manager"}}`

			resp, err := newAuth(staticTokens{}).Login(context.Background(), "a@example.com", "secret")
			Expect(err).NotTo(HaveOccurred())

			Expect(received.Header.Get("Content-Type")).To(Equal("application/x-www-form-urlencoded"))

			principal := resp.Principal()
			Expect(principal.Identity).To(Equal("a@example.com"))
			Expect(principal.Role).To(Equal(session.RoleManager))
			Expect(principal.Token).To(Equal("tok"))
		})

		It("degrades an unknown backend role to Staff", func() {
			body = `{"access_token":"tok","token_type":"bearer","user":{"email":"a@example.com","role_name":"Owner"}}`

			resp, err := newAuth(staticTokens{}).Login(context.Background(), "a@example.com", "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Principal().Role).To(Equal(session.RoleStaff))
		})
	})

	Describe("Assistant queries", func() {
		It("parses the full response shape", func() {
			body = `{"summary":"two rows","sql_query":"SELECT 1","results":[{"a":1},{"a":2}]}`

			client := api.NewAssistantClient(api.NewClient(server.URL, staticTokens{token: "t"}, slog.Default()))
			resp, err := client.Query(context.Background(), "show rows")

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Summary).To(Equal("two rows"))
			Expect(resp.SQLQuery).To(Equal("SELECT 1"))
			Expect(resp.Results).To(HaveLen(2))
		})

		It("carries the server's failure explanation on the error", func() {
			status = http.StatusBadRequest
			body = `{"summary":"no such column"}`

			client := api.NewAssistantClient(api.NewClient(server.URL, staticTokens{token: "t"}, slog.Default()))
			_, err := client.Query(context.Background(), "bad question")

			var apiErr *api.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.ServerMessage).To(Equal("no such column"))
		})
	})

	Describe("write invalidation", func() {
		It("notifies the invalidator with the operation's affected aggregates", func() {
			body = `{"id":7,"sku":"X","name":"Thing"}`

			var got []string
			inv := api.InvalidatorFunc(func(keys []string) { got = keys })
			client := api.NewClient(server.URL, staticTokens{token: "t"}, slog.Default(), api.WithInvalidator(inv))

			_, err := api.NewInventoryClient(client).CreateProduct(context.Background(), api.Product{SKU: "X", Name: "Thing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(ContainElements(
				api.AggregateAdminDashboard,
				api.AggregateMyDashboard,
				api.AggregateInventoryAnalytics,
			))
		})

		It("stays quiet when the write fails", func() {
			status = http.StatusForbidden
			body = `{"detail":"nope"}`

			called := false
			inv := api.InvalidatorFunc(func([]string) { called = true })
			client := api.NewClient(server.URL, staticTokens{token: "t"}, slog.Default(), api.WithInvalidator(inv))

			_, err := api.NewInventoryClient(client).CreateProduct(context.Background(), api.Product{})
			Expect(err).To(HaveOccurred())
			Expect(called).To(BeFalse())
		})
	})
})

var _ = Describe("AffectedAggregates", func() {
	It("declares both dashboards stale for order creation", func() {
		Expect(api.AffectedAggregates(api.OpOrderCreate)).To(ContainElements(
			api.AggregateAdminDashboard,
			api.AggregateMyDashboard,
		))
	})

	It("returns nothing for unknown operations", func() {
		Expect(api.AffectedAggregates(api.Operation("bogus"))).To(BeNil())
	})

	It("hands out copies, not the table itself", func() {
		first := api.AffectedAggregates(api.OpExpenseWrite)
		first[0] = "tampered"
		Expect(api.AffectedAggregates(api.OpExpenseWrite)).NotTo(ContainElement("tampered"))
	})
})
