package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/items/internal/adapters/repository"
	"github.com/okian/items/internal/domain/fault"
	"github.com/okian/items/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stepClock returns start, start+step, start+2*step, ...
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

func TestMemoryStoreInsertAndList(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(repository.WithClock(stepClock(start, time.Second)))

		Convey("When listing", func() {
			items, err := store.List(ctx)

			Convey("Then it should return an empty, non-nil slice", func() {
				So(err, ShouldBeNil)
				So(items, ShouldNotBeNil)
				So(items, ShouldBeEmpty)
			})
		})

		Convey("When inserting an item", func() {
			item, err := store.Insert(ctx, model.NewItem{Name: model.Text("foo"), Description: model.Text("bar")})

			Convey("Then it should get an id and a creation time", func() {
				So(err, ShouldBeNil)
				So(item.ID, ShouldHaveLength, 24)
				So(item.CreatedAt, ShouldEqual, start)
				So(*item.Name, ShouldEqual, "foo")
				So(*item.Description, ShouldEqual, "bar")
			})

			Convey("And it should be listed with its fields preserved", func() {
				items, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 1)
				So(items[0], ShouldResemble, item)
			})
		})

		Convey("When inserting several items", func() {
			for i := 0; i < 5; i++ {
				_, err := store.Insert(ctx, model.NewItem{Name: model.Text(fmt.Sprintf("item-%d", i))})
				So(err, ShouldBeNil)
			}
			items, err := store.List(ctx)

			Convey("Then they should be ordered newest first", func() {
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 5)
				So(*items[0].Name, ShouldEqual, "item-4")
				So(*items[4].Name, ShouldEqual, "item-0")
				for i := 1; i < len(items); i++ {
					So(items[i-1].CreatedAt.Before(items[i].CreatedAt), ShouldBeFalse)
				}
			})
		})

		Convey("When mutating a listed item", func() {
			_, _ = store.Insert(ctx, model.NewItem{Name: model.Text("foo")})
			items, _ := store.List(ctx)
			*items[0].Name = "mutated"

			Convey("Then the stored item should be unchanged", func() {
				again, _ := store.List(ctx)
				So(*again[0].Name, ShouldEqual, "foo")
			})
		})
	})
}

func TestMemoryStoreTies(t *testing.T) {
	Convey("Given a store whose clock never advances", t, func() {
		ctx := context.Background()
		fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return fixed }))

		for i := 0; i < 10; i++ {
			_, err := store.Insert(ctx, model.NewItem{})
			So(err, ShouldBeNil)
		}

		Convey("Then all items should be kept and ordered by id desc", func() {
			items, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 10)
			for i := 1; i < len(items); i++ {
				So(items[i-1].ID > items[i].ID, ShouldBeTrue)
			}
		})
	})
}

func TestMemoryStoreDelete(t *testing.T) {
	Convey("Given a store with one item", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		item, err := store.Insert(ctx, model.NewItem{Name: model.Text("doomed")})
		So(err, ShouldBeNil)

		Convey("When deleting it", func() {
			err := store.Delete(ctx, item.ID)

			Convey("Then it should no longer be listed", func() {
				So(err, ShouldBeNil)
				items, _ := store.List(ctx)
				So(items, ShouldBeEmpty)
				So(store.Len(), ShouldEqual, 0)
			})

			Convey("And deleting it again should report not found", func() {
				err := store.Delete(ctx, item.ID)
				So(fault.KindOf(err), ShouldEqual, fault.KindNotFound)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When deleting a malformed id", func() {
			err := store.Delete(ctx, "not-an-object-id")

			Convey("Then it should be a validation fault", func() {
				So(fault.KindOf(err), ShouldEqual, fault.KindValidation)
				So(errors.Is(err, repository.ErrInvalidID), ShouldBeTrue)
				So(store.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestMemoryStoreClosed(t *testing.T) {
	Convey("Given a closed store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		So(store.Ping(ctx), ShouldBeNil)
		So(store.Close(ctx), ShouldBeNil)

		Convey("Then every operation should be a connection fault", func() {
			_, err := store.List(ctx)
			So(fault.KindOf(err), ShouldEqual, fault.KindConnection)
			_, err = store.Insert(ctx, model.NewItem{})
			So(fault.KindOf(err), ShouldEqual, fault.KindConnection)
			So(fault.KindOf(store.Delete(ctx, "65f1c0ffee0000000000beef")), ShouldEqual, fault.KindConnection)
			So(fault.KindOf(store.Ping(ctx)), ShouldEqual, fault.KindConnection)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		store := repository.NewMemoryStore()

		Convey("Then operations should fail as connection faults", func() {
			_, err := store.Insert(ctx, model.NewItem{})
			So(fault.KindOf(err), ShouldEqual, fault.KindConnection)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		const writers, perWriter = 8, 50

		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					item, err := store.Insert(ctx, model.NewItem{})
					if err != nil {
						return
					}
					if i%2 == 0 {
						_ = store.Delete(ctx, item.ID)
					}
					_, _ = store.List(ctx)
				}
			}()
		}
		wg.Wait()

		Convey("Then the final count should be consistent", func() {
			So(store.Len(), ShouldEqual, writers*perWriter/2)
			items, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, writers*perWriter/2)
		})
	})
}

func TestUnavailableStore(t *testing.T) {
	Convey("Given a store that could not be opened", t, func() {
		ctx := context.Background()
		cause := errors.New("dial tcp: connection refused")
		store := repository.Unavailable(cause)

		Convey("Then operations should fail with the cause as a connection fault", func() {
			_, err := store.List(ctx)
			So(fault.KindOf(err), ShouldEqual, fault.KindConnection)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)

			_, err = store.Insert(ctx, model.NewItem{})
			So(fault.KindOf(err), ShouldEqual, fault.KindConnection)
			So(fault.KindOf(store.Ping(ctx)), ShouldEqual, fault.KindConnection)
			So(store.Close(ctx), ShouldBeNil)
		})

		Convey("And malformed ids should still be validation faults", func() {
			So(fault.KindOf(store.Delete(ctx, "xyz")), ShouldEqual, fault.KindValidation)
			So(fault.KindOf(store.Delete(ctx, "65f1c0ffee0000000000beef")), ShouldEqual, fault.KindConnection)
		})
	})
}
