package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	"github.com/gorilla/mux"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quantkit/quantkit/controller"
	"github.com/quantkit/quantkit/quantity"
)

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
		c *controller.Controller
	)

	BeforeEach(func() {
		m = NewMonitor()

		c = controller.MakeBuilder().
			WithName("Cart.Item1").
			WithBounds(quantity.Bounds{Min: 0, Max: 10, Step: 1}).
			WithInitialQuantity(3).
			Build()
		m.Register(c)
	})

	It("should register controllers", func() {
		Expect(m.controllers).To(HaveLen(1))
	})

	It("should list controller names", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/list_controllers", nil)

		m.listControllers(w, r)

		Expect(w.Body.String()).To(Equal(`["Cart.Item1"]`))
	})

	It("should report controller state", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/state/Cart.Item1", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Cart.Item1"})

		m.controllerState(w, r)

		var state controller.State
		err := json.Unmarshal(w.Body.Bytes(), &state)
		Expect(err).To(BeNil())
		Expect(state.Quantity).To(Equal(3))
		Expect(state.Loading).To(BeFalse())
	})

	It("should return 404 for an unknown controller", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/state/NoSuch", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "NoSuch"})

		m.controllerState(w, r)

		Expect(w.Code).To(Equal(404))
	})

	It("should set the quantity", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/set/Cart.Item1/7", nil)
		r = mux.SetURLVars(r,
			map[string]string{"name": "Cart.Item1", "value": "7"})

		m.setQuantity(w, r)

		Expect(c.Quantity()).To(Equal(7))
	})

	It("should reject a malformed quantity", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/set/Cart.Item1/many", nil)
		r = mux.SetURLVars(r,
			map[string]string{"name": "Cart.Item1", "value": "many"})

		m.setQuantity(w, r)

		Expect(w.Code).To(Equal(400))
		Expect(c.Quantity()).To(Equal(3))
	})

	It("should increment and decrement", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/increment/Cart.Item1", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Cart.Item1"})
		m.increment(w, r)
		Expect(c.Quantity()).To(Equal(4))

		w = httptest.NewRecorder()
		r = httptest.NewRequest("GET", "/api/decrement/Cart.Item1", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Cart.Item1"})
		m.decrement(w, r)
		Expect(c.Quantity()).To(Equal(3))
	})

	It("should cancel an outstanding operation", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/cancel/Cart.Item1", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Cart.Item1"})

		m.cancelOperation(w, r)

		var state controller.State
		err := json.Unmarshal(w.Body.Bytes(), &state)
		Expect(err).To(BeNil())
		Expect(state.Loading).To(BeFalse())
	})
})
