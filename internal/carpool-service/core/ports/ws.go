package ports

import websocketdto "carpool/internal/carpool-service/core/domain/websocket_dto"

type INotifyWebsocket interface {
	WriteToUser(userID string, msg websocketdto.Event)
}
