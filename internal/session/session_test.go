package session_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bizpulse/bizdash/internal/session"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

var _ = Describe("ParseRole", func() {
	It("maps known role names onto the closed set", func() {
		Expect(session.ParseRole("Admin")).To(Equal(session.RoleAdmin))
		Expect(session.ParseRole("Manager")).To(Equal(session.RoleManager))
		Expect(session.ParseRole("Staff")).To(Equal(session.RoleStaff))
	})

	It("defaults unknown names to the least-privileged role", func() {
		Expect(session.ParseRole("Superuser")).To(Equal(session.RoleStaff))
		Expect(session.ParseRole("admin")).To(Equal(session.RoleStaff))
		Expect(session.ParseRole("")).To(Equal(session.RoleStaff))
	})
})

var _ = Describe("Store", func() {
	var store *session.Store

	BeforeEach(func() {
		store = session.NewStore()
	})

	It("starts unauthenticated", func() {
		_, ok := store.Current()
		Expect(ok).To(BeFalse())
		_, ok = store.Token()
		Expect(ok).To(BeFalse())
	})

	Describe("Set", func() {
		It("replaces the principal wholesale", func() {
			store.Set(session.Principal{Identity: "a@example.com", Role: session.RoleManager, Token: "t1"})
			store.Set(session.Principal{Identity: "b@example.com", Role: session.RoleAdmin, Token: "t2"})

			p, ok := store.Current()
			Expect(ok).To(BeTrue())
			Expect(p.Identity).To(Equal("b@example.com"))
			Expect(p.Role).To(Equal(session.RoleAdmin))
			Expect(p.Token).To(Equal("t2"))
		})

		It("normalizes out-of-set roles to Staff", func() {
			store.Set(session.Principal{Identity: "a@example.com", Role: session.Role("Root"), Token: "t"})

			p, _ := store.Current()
			Expect(p.Role).To(Equal(session.RoleStaff))
		})

		It("does not let callers mutate the stored principal through the returned copy", func() {
			store.Set(session.Principal{Identity: "a@example.com", Role: session.RoleStaff, Token: "t"})

			p, _ := store.Current()
			p.Role = session.RoleAdmin

			again, _ := store.Current()
			Expect(again.Role).To(Equal(session.RoleStaff))
		})
	})

	Describe("Clear", func() {
		It("makes subsequent checks unauthenticated", func() {
			store.Set(session.Principal{Identity: "a@example.com", Role: session.RoleStaff, Token: "t"})
			store.Clear()

			_, ok := store.Current()
			Expect(ok).To(BeFalse())
			_, ok = store.Token()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Epoch", func() {
		It("moves on every Set and Clear", func() {
			e0 := store.Epoch()
			store.Set(session.Principal{Identity: "a@example.com", Role: session.RoleStaff, Token: "t"})
			e1 := store.Epoch()
			store.Clear()
			e2 := store.Epoch()

			Expect(e1).To(BeNumerically(">", e0))
			Expect(e2).To(BeNumerically(">", e1))
		})

		It("holds still between changes", func() {
			store.Set(session.Principal{Identity: "a@example.com", Role: session.RoleStaff, Token: "t"})
			Expect(store.Epoch()).To(Equal(store.Epoch()))
		})
	})

	Describe("Token", func() {
		It("exposes the bearer token for the transport", func() {
			store.Set(session.Principal{Identity: "a@example.com", Role: session.RoleStaff, Token: "bearer-value"})

			token, ok := store.Token()
			Expect(ok).To(BeTrue())
			Expect(token).To(Equal("bearer-value"))
		})
	})
})
