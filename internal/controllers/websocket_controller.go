package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/filters"
	"factory-ops/internal/realtime"
	"factory-ops/internal/services"
	"factory-ops/pkg/constants"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/service"
	"factory-ops/pkg/utils"
	appwebsocket "factory-ops/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketController struct {
	hub          *appwebsocket.Hub
	jwtService   service.JWTService
	queryService services.OrderQueryServiceInterface
	feed         realtime.Feed
	location     *time.Location
	defaultLimit int
	logger       *zap.Logger
}

func NewWebSocketController(
	hub *appwebsocket.Hub,
	jwtService service.JWTService,
	queryService services.OrderQueryServiceInterface,
	feed realtime.Feed,
	location *time.Location,
	defaultLimit int,
	logger *zap.Logger,
) *WebSocketController {
	return &WebSocketController{
		hub:          hub,
		jwtService:   jwtService,
		queryService: queryService,
		feed:         feed,
		location:     location,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// ServeWs авторизует по ?token=, так как браузерный WebSocket не умеет слать заголовки.
func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	tokenString := ctx.QueryParam("token")
	if tokenString == "" {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}

	claims, err := c.jwtService.ValidateToken(tokenString)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	actor := claims.Profile()

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return err
	}

	client := appwebsocket.NewClient(c.hub, conn, actor.ID)
	session := newWatchSession(c, client, actor)
	client.OnMessage = session.handle

	c.hub.Register(client)
	go session.closeWith(client.Done())
	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент подключен", zap.Uint64("userID", actor.ID))
	return nil
}

type watchOrderPayload struct {
	OrderID uint64 `json:"order_id"`
}

// watchSession - подписки одного соединения. Одновременно открыта максимум одна карточка
// и один список; новая подписка того же вида заменяет старую.
type watchSession struct {
	ctrl   *WebSocketController
	client *appwebsocket.Client
	actor  entities.Profile
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	orderCancel context.CancelFunc
	listCancel  context.CancelFunc
}

func newWatchSession(ctrl *WebSocketController, client *appwebsocket.Client, actor entities.Profile) *watchSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &watchSession{ctrl: ctrl, client: client, actor: actor, ctx: ctx, cancel: cancel}
}

func (s *watchSession) closeWith(done <-chan struct{}) {
	<-done
	s.cancel()
}

func (s *watchSession) handle(data []byte) {
	var msg appwebsocket.IncomingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError("Неверный формат сообщения")
		return
	}

	switch msg.Type {
	case constants.CommandWatchOrder:
		var p watchOrderPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.OrderID == 0 {
			s.sendError("Не указан order_id")
			return
		}
		s.watchOrder(p.OrderID)
	case constants.CommandWatchOrders:
		params := map[string]string{}
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &params); err != nil {
				s.sendError("Неверные параметры списка")
				return
			}
		}
		s.watchOrders(params)
	case constants.CommandUnwatch:
		s.replace(&s.orderCancel, nil)
		s.replace(&s.listCancel, nil)
	default:
		s.sendError("Неизвестная команда: " + msg.Type)
	}
}

func (s *watchSession) watchOrder(orderID uint64) {
	view := services.NewOrderView(s.ctrl.queryService, s.actor, orderID, func(order *dto.OrderDetailsDTO, err error) {
		if err != nil {
			s.ctrl.logger.Debug("WebSocket: ошибка перезагрузки заявки", zap.Uint64("orderID", orderID), zap.Error(err))
			s.sendError(err.Error())
			if order == nil {
				return
			}
		}
		s.send(constants.EnvelopeOrderState, order)
	})

	bridge := realtime.NewBridge(s.ctrl.feed, view.Reload, s.ctrl.logger,
		realtime.TableOrders, realtime.TableOrderParts, realtime.TableStatusTracker)
	s.start(&s.orderCancel, bridge, view.Reload)
}

func (s *watchSession) watchOrders(params map[string]string) {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	filter := filters.FromQuery(values, s.ctrl.location)
	page, limit := utils.ParsePaginationParams(values, s.ctrl.defaultLimit)

	view := services.NewOrderListView(s.ctrl.queryService, filter, page, limit, func(res *dto.OrderPage, err error) {
		if err != nil {
			s.sendError(err.Error())
			if res == nil {
				return
			}
		}
		s.send(constants.EnvelopeOrderList, res)
	})

	bridge := realtime.NewBridge(s.ctrl.feed, view.Reload, s.ctrl.logger, realtime.TableOrders)
	s.start(&s.listCancel, bridge, view.Reload)
}

// start делает первую загрузку и держит мост до отмены подписки или закрытия соединения.
func (s *watchSession) start(slot *context.CancelFunc, bridge *realtime.Bridge, reload realtime.ReloadFunc) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.replace(slot, cancel)

	go func() { _ = bridge.Run(ctx) }()
	go func() { _ = reload(ctx) }()
}

func (s *watchSession) replace(slot *context.CancelFunc, next context.CancelFunc) {
	s.mu.Lock()
	prev := *slot
	*slot = next
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
}

func (s *watchSession) send(messageType string, payload interface{}) {
	if err := s.client.SendEnvelope(messageType, payload); err != nil {
		s.ctrl.logger.Debug("WebSocket: сообщение не отправлено", zap.Uint64("userID", s.actor.ID), zap.Error(err))
	}
}

func (s *watchSession) sendError(message string) {
	s.send(constants.EnvelopeError, map[string]string{"message": message})
}
