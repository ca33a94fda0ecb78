package events

import "testing"

func TestPublishReachesAllSubscribersInOrder(t *testing.T) {
	var topic Topic[int]
	var order []string

	topic.Subscribe(func(v int) { order = append(order, "a") })
	topic.Subscribe(func(v int) { order = append(order, "b") })

	topic.Publish(1)
	topic.Publish(2)

	want := []string{"a", "b", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("deliveries: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("delivery order: %v", order)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	var topic Topic[string]
	var got []string

	sub := topic.Subscribe(func(v string) { got = append(got, v) })
	topic.Publish("one")

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent
	topic.Publish("two")

	if len(got) != 1 || got[0] != "one" {
		t.Fatalf("deliveries after unsubscribe: %v", got)
	}
}

func TestUnsubscribeOneOfMany(t *testing.T) {
	var topic Topic[int]
	var a, b, c int

	subA := topic.Subscribe(func(int) { a++ })
	topic.Subscribe(func(int) { b++ })
	topic.Subscribe(func(int) { c++ })

	subA.Unsubscribe()
	topic.Publish(0)

	if a != 0 || b != 1 || c != 1 {
		t.Fatalf("deliveries a=%d b=%d c=%d", a, b, c)
	}
}

func TestNilSubscriptionIsSafe(t *testing.T) {
	var sub *Subscription
	sub.Unsubscribe()
}

func TestSignalNotifiesEveryListener(t *testing.T) {
	var signal Signal
	var first, second int

	signal.Listen(func() { first++ })
	sub := signal.Listen(func() { second++ })

	signal.Notify()
	sub.Unsubscribe()
	signal.Notify()

	if first != 2 {
		t.Fatalf("first listener fired %d times", first)
	}
	if second != 1 {
		t.Fatalf("second listener fired %d times", second)
	}
}
