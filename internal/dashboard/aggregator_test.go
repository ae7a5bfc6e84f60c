package dashboard_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bizpulse/bizdash/internal/api"
	"github.com/bizpulse/bizdash/internal/dashboard"
	"github.com/bizpulse/bizdash/internal/session"
)

func TestDashboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Suite")
}

// fakeFetcher serves a canned payload or error and counts calls.
type fakeFetcher struct {
	mu    sync.Mutex
	raw   json.RawMessage
	err   error
	calls int

	// before runs just ahead of returning, to model mid-flight events.
	before func()
}

func (f *fakeFetcher) Dashboard(ctx context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	raw, err, before := f.raw, f.err, f.before
	f.mu.Unlock()
	if before != nil {
		before()
	}
	return raw, err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const adminPayload = `{
	"kpis": {"total_revenue_30d": 9000, "net_profit_30d": 4200},
	"finance_series": [{"period": "2026-08", "value": 4200}],
	"recent_orders": [{"id": 1, "customer": "Acme", "total": 120.5, "status": "paid"}]
}`

const personalPayload = `{
	"kpis": {"total_revenue_30d": 9000, "order_count_30d": 12},
	"sales_series": [{"period": "2026-08", "value": 9000}]
}`

var _ = Describe("Aggregator", func() {
	var (
		store    *session.Store
		primary  *fakeFetcher
		fallback *fakeFetcher
		agg      *dashboard.Aggregator
	)

	forbidPrimary := func() {
		primary.raw = nil
		primary.err = &api.APIError{StatusCode: http.StatusForbidden, Message: "request rejected"}
	}

	BeforeEach(func() {
		store = session.NewStore()
		store.Set(session.Principal{Identity: "a@example.com", Role: session.RoleAdmin, Token: "t"})
		primary = &fakeFetcher{raw: json.RawMessage(adminPayload)}
		fallback = &fakeFetcher{raw: json.RawMessage(personalPayload)}
		agg = dashboard.NewAggregator(primary, fallback, store, slog.Default())
	})

	It("serves the privileged aggregate when the primary succeeds", func() {
		model, source := agg.Load(context.Background())

		Expect(source).To(Equal(dashboard.SourceAdmin))
		Expect(model.KPI("net_profit_30d")).To(Equal(4200.0))
		Expect(model.RecentOrders).To(HaveLen(1))
		Expect(fallback.Calls()).To(BeZero())
	})

	It("falls back in full when the primary is forbidden", func() {
		forbidPrimary()

		model, source := agg.Load(context.Background())

		Expect(source).To(Equal(dashboard.SourcePersonal))
		Expect(model.KPI("order_count_30d")).To(Equal(12.0))
		Expect(model.SalesSeries).To(HaveLen(1))
	})

	It("never splices primary fields into a fallback model", func() {
		forbidPrimary()

		model, _ := agg.Load(context.Background())

		Expect(model.KPI("net_profit_30d")).To(BeZero())
		Expect(model.FinanceSeries).To(BeEmpty())
		Expect(model.RecentOrders).To(BeEmpty())
	})

	It("falls back identically on transient primary failures", func() {
		primary.raw = nil
		primary.err = &api.APIError{Message: "request failed", Cause: context.DeadlineExceeded}

		_, source := agg.Load(context.Background())
		Expect(source).To(Equal(dashboard.SourcePersonal))
	})

	It("treats an empty primary body as a failure", func() {
		primary.raw = nil

		_, source := agg.Load(context.Background())
		Expect(source).To(Equal(dashboard.SourcePersonal))
	})

	It("yields an empty model when both sources fail", func() {
		forbidPrimary()
		fallback.raw = nil
		fallback.err = &api.APIError{StatusCode: http.StatusInternalServerError}

		model, source := agg.Load(context.Background())

		Expect(source).To(Equal(dashboard.SourceNone))
		Expect(model.IsZero()).To(BeTrue())
		Expect(model.KPI("total_revenue_30d")).To(BeZero())
	})

	Describe("caching", func() {
		It("serves repeat loads from the cached model", func() {
			agg.Load(context.Background())
			agg.Load(context.Background())

			Expect(primary.Calls()).To(Equal(1))
		})

		It("refetches after an invalidation that names a dashboard aggregate", func() {
			agg.Load(context.Background())
			agg.Invalidate([]string{api.AggregateMyDashboard})
			agg.Load(context.Background())

			Expect(primary.Calls()).To(Equal(2))
		})

		It("keeps the cache when the invalidation is unrelated", func() {
			agg.Load(context.Background())
			agg.Invalidate([]string{api.AggregateInventoryAnalytics})
			agg.Load(context.Background())

			Expect(primary.Calls()).To(Equal(1))
		})

		It("coalesces concurrent cold-cache loads into one fetch", func() {
			release := make(chan struct{})
			primary.before = func() { <-release }

			sources := make(chan dashboard.Source, 2)
			for i := 0; i < 2; i++ {
				go func() {
					defer GinkgoRecover()
					_, src := agg.Load(context.Background())
					sources <- src
				}()
			}

			Eventually(primary.Calls).Should(Equal(1))
			Consistently(primary.Calls).Should(Equal(1))

			close(release)
			Expect(<-sources).To(Equal(dashboard.SourceAdmin))
			Expect(<-sources).To(Equal(dashboard.SourceAdmin))
			Expect(primary.Calls()).To(Equal(1))
		})
	})

	Describe("session replacement", func() {
		It("discards a response issued under a replaced session", func() {
			primary.before = func() { store.Clear() }

			model, source := agg.Load(context.Background())

			Expect(source).To(Equal(dashboard.SourceNone))
			Expect(model.IsZero()).To(BeTrue())
		})

		It("does not cache the discarded result", func() {
			primary.before = func() { store.Clear() }
			agg.Load(context.Background())

			primary.before = nil
			store.Set(session.Principal{Identity: "b@example.com", Role: session.RoleAdmin, Token: "t2"})
			_, source := agg.Load(context.Background())

			Expect(source).To(Equal(dashboard.SourceAdmin))
			Expect(primary.Calls()).To(Equal(2))
		})

		It("treats the cache as stale once the session is replaced", func() {
			_, source := agg.Load(context.Background())
			Expect(source).To(Equal(dashboard.SourceAdmin))

			// The admin signs out and a Staff principal signs in; their
			// primary fetch is forbidden, so the personal aggregate must
			// answer. The admin model cached above may not leak through.
			store.Clear()
			store.Set(session.Principal{Identity: "staff@example.com", Role: session.RoleStaff, Token: "t2"})
			forbidPrimary()

			model, source := agg.Load(context.Background())

			Expect(source).To(Equal(dashboard.SourcePersonal))
			Expect(model.KPI("net_profit_30d")).To(BeZero())
			Expect(model.RecentOrders).To(BeEmpty())
			Expect(primary.Calls()).To(Equal(2))
		})
	})
})

var _ = Describe("Decode", func() {
	It("parses subtrees independently", func() {
		raw := json.RawMessage(`{
			"kpis": {"total_revenue_30d": 100},
			"sales_series": "not-an-array",
			"inventory_alerts": [{"product_id": 3, "name": "Widget", "stock": 1, "reorder_level": 5}]
		}`)

		m := dashboard.Decode(raw)

		Expect(m.KPI("total_revenue_30d")).To(Equal(100.0))
		Expect(m.SalesSeries).To(BeEmpty())
		Expect(m.InventoryAlerts).To(HaveLen(1))
	})

	It("returns an empty model for garbage payloads", func() {
		Expect(dashboard.Decode(json.RawMessage(`[]`)).IsZero()).To(BeTrue())
		Expect(dashboard.Decode(json.RawMessage(`null`)).IsZero()).To(BeTrue())
		Expect(dashboard.Decode(nil).IsZero()).To(BeTrue())
	})

	It("reads missing KPIs as zero", func() {
		m := dashboard.Decode(json.RawMessage(`{"kpis": {}}`))
		Expect(m.KPI("anything")).To(BeZero())
	})
})
