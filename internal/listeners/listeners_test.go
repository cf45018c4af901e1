package listeners

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-ops/internal/entities"
	"factory-ops/internal/events"
	"factory-ops/internal/realtime"
	"factory-ops/pkg/constants"
	"factory-ops/pkg/eventbus"
	"factory-ops/pkg/websocket"
)

type sentNotification struct {
	userID  uint64
	payload websocket.NotificationPayload
	kind    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) SendNotification(userID uint64, payload interface{}, messageType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{userID: userID, payload: payload.(websocket.NotificationPayload), kind: messageType})
	return nil
}

func newNotificationFixture() (*eventbus.Bus, *recordingNotifier) {
	bus := eventbus.New(zap.NewNop())
	notifier := &recordingNotifier{}
	NewNotificationListener(notifier, zap.NewNop()).Register(bus)
	return bus, notifier
}

var (
	creator = entities.Profile{ID: 7, Name: "Dept User", Permission: constants.PermissionDepartment}
	office  = entities.Profile{ID: 8, Name: "Office User", Permission: constants.PermissionOffice}
)

func TestNotification_CommittedGoesToActor(t *testing.T) {
	bus, notifier := newNotificationFixture()
	machineID := uint64(100)

	bus.Publish(context.Background(), events.OrderCommittedEvent{
		OrderID:    15,
		Order:      entities.Order{ID: 15, MachineID: &machineID},
		PartsCount: 3,
		Actor:      creator,
	})
	bus.Wait()

	require.Len(t, notifier.sent, 1)
	n := notifier.sent[0]
	assert.Equal(t, creator.ID, n.userID)
	assert.Equal(t, constants.EnvelopeNotification, n.kind)
	assert.Equal(t, uint64(15), n.payload.OrderID)
	assert.Equal(t, machineID, n.payload.MachineID)
	assert.Equal(t, "/orders/15", n.payload.Link)
	assert.NotEmpty(t, n.payload.EventID)
}

func TestNotification_StatusChangeGoesToCreator(t *testing.T) {
	bus, notifier := newNotificationFixture()

	bus.Publish(context.Background(), events.OrderStatusChangedEvent{
		OrderID:    15,
		CreatorID:  creator.ID,
		FromStatus: constants.StatusApproved,
		ToStatus:   constants.StatusProcessing,
		Actor:      office,
	})
	bus.Wait()

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, creator.ID, notifier.sent[0].userID)
	assert.Contains(t, notifier.sent[0].payload.Message, constants.StatusProcessing)
}

func TestNotification_OwnStatusChangeIsSilent(t *testing.T) {
	bus, notifier := newNotificationFixture()

	bus.Publish(context.Background(), events.OrderStatusChangedEvent{
		OrderID:   15,
		CreatorID: creator.ID,
		Actor:     creator,
	})
	bus.Wait()

	assert.Empty(t, notifier.sent)
}

type broadcast struct {
	kind    string
	payload ChangePayload
}

type recordingBroadcaster struct {
	out chan broadcast
}

func (r *recordingBroadcaster) Broadcast(_ context.Context, messageType string, payload interface{}) error {
	r.out <- broadcast{kind: messageType, payload: payload.(ChangePayload)}
	return nil
}

func TestChangeBroadcaster_ForwardsEveryTable(t *testing.T) {
	broker := realtime.NewBroker(0, zap.NewNop())
	out := &recordingBroadcaster{out: make(chan broadcast, 4)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewChangeBroadcaster(broker, out, zap.NewNop()).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return broker.Subscribers(realtime.AnyTable) == 1 }, time.Second, 5*time.Millisecond)

	broker.Publish(realtime.Change{Table: realtime.TableOrders, Action: "UPDATE", RowID: 15})
	broker.Publish(realtime.Change{Table: realtime.TableMachines, Action: "UPDATE", RowID: 100})

	for _, want := range []ChangePayload{
		{Table: realtime.TableOrders, Action: "UPDATE", ID: 15},
		{Table: realtime.TableMachines, Action: "UPDATE", ID: 100},
	} {
		select {
		case got := <-out.out:
			assert.Equal(t, constants.EnvelopeOrdersChanged, got.kind)
			assert.Equal(t, want, got.payload)
		case <-time.After(time.Second):
			t.Fatalf("не дождались рассылки %+v", want)
		}
	}

	cancel()
	<-done
	assert.Zero(t, broker.Subscribers(realtime.AnyTable))
}
