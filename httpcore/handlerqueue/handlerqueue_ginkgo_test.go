package handlerqueue

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Queue backpressure and ordering", func() {
	var q *Queue

	BeforeEach(func() {
		q = New(2)
	})

	AfterEach(func() {
		q.Close()
	})

	Describe("producing up to capacity", func() {
		It("should accept items until full, then reject with Busy", func() {
			Expect(q.Produce("a")).To(Succeed())
			Expect(q.Produce("b")).To(Succeed())
			Expect(q.Produce("c")).To(HaveOccurred())

			produced, consumed, rejected := q.Counters()
			Expect(produced).To(BeEquivalentTo(3))
			Expect(rejected).To(BeEquivalentTo(1))
			Expect(produced - consumed - rejected).To(BeEquivalentTo(q.Len()))
		})
	})

	Describe("consuming", func() {
		It("should return items in FIFO order", func() {
			Expect(q.Produce("first")).To(Succeed())
			Expect(q.Produce("second")).To(Succeed())

			got, err := q.Consume(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("first"))

			got, err = q.Consume(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("second"))
		})

		It("should unblock once a producer arrives on an empty queue", func() {
			done := make(chan interface{}, 1)
			go func() {
				v, err := q.Consume(context.Background(), 0)
				Expect(err).NotTo(HaveOccurred())
				done <- v
			}()

			Expect(q.Produce("late")).To(Succeed())
			Eventually(done, time.Second).Should(Receive(Equal("late")))
		})

		It("should time out when no item arrives before the deadline", func() {
			_, err := q.Consume(context.Background(), 10*time.Millisecond)
			Expect(err).To(HaveOccurred())
		})

		It("should return immediately when ctx is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := q.Consume(ctx, 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("the handle pool", func() {
		It("should hand out an empty handle after a recycle", func() {
			h := q.GetHandle()
			h.buf = append(h.buf, 1, 2, 3)
			q.RecycleHandle(h)

			again := q.GetHandle()
			Expect(again.buf).To(HaveLen(0))
		})
	})
})
