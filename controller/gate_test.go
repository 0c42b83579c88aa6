package controller_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/quantkit/quantkit/controller"
	"github.com/quantkit/quantkit/quantity"
)

var _ = Describe("Validation gate", func() {
	var (
		mockCtrl  *gomock.Controller
		validator *MockValidator
		c         *controller.Controller
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		validator = NewMockValidator(mockCtrl)

		c = controller.MakeBuilder().
			WithBounds(quantity.Bounds{Min: 0, Max: 5, Step: 1}).
			WithInitialQuantity(2).
			WithValidator(validator).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should consult the gate with the display and candidate quantities", func() {
		validator.EXPECT().Allow(2, 3).Return(true)

		c.Increment()

		Expect(c.Quantity()).To(Equal(3))
	})

	It("should refuse the mutation when the gate denies", func() {
		validator.EXPECT().Allow(2, 3).Return(false)

		c.Increment()

		Expect(c.Quantity()).To(Equal(2))
	})

	It("should consult the gate once per decrement", func() {
		validator.EXPECT().Allow(2, 1).Return(true)

		c.Decrement()

		Expect(c.Quantity()).To(Equal(1))
	})

	It("should gate SetQuantity with the committed quantity", func() {
		validator.EXPECT().Allow(2, 5).Return(true)

		c.SetQuantity(9)

		Expect(c.Quantity()).To(Equal(5))
	})

	It("should gate asynchronous operations before starting them", func() {
		validator.EXPECT().Allow(2, 4).Return(true)

		ok := c.SetQuantityAsync(context.Background(), 4, nil, false)

		Expect(ok).To(BeTrue())
		Expect(c.Quantity()).To(Equal(4))
	})

	It("should not start a rejected asynchronous operation", func() {
		validator.EXPECT().Allow(2, 4).Return(false)

		ok := c.SetQuantityAsync(context.Background(), 4, nil, true)

		Expect(ok).To(BeFalse())
		Expect(c.IsLoading()).To(BeFalse())
		Expect(c.Quantity()).To(Equal(2))
	})

	It("should not consult the gate for Collapse", func() {
		c.Collapse()

		Expect(c.Quantity()).To(Equal(0))
		Expect(c.IsExpanded()).To(BeFalse())
	})

	It("should not consult the gate for CancelOperation", func() {
		c.CancelOperation()

		Expect(c.Quantity()).To(Equal(2))
	})

	It("should not consult the gate on Dispose", func() {
		c.Dispose()

		Expect(c.IsDisposed()).To(BeTrue())
	})
})
