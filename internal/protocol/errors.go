package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeInvalidName       = 1003 // 缺少玩家昵称
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeGameStarted       = 2004 // 游戏已开始
	ErrCodeNoRoomCode        = 2005 // 房间号耗尽
	ErrCodeGameNotStart      = 3001
	ErrCodeNotYourTurn       = 3002
	ErrCodeDrawPileEmpty     = 3003
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息（面向浏览器玩家，法语）
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "Une erreur inattendue est survenue.",
	ErrCodeInvalidMsg:        "Message invalide.",
	ErrCodeRateLimit:         "Trop de requêtes, ralentissez.",
	ErrCodeInvalidName:       "Le nom du joueur est requis.",
	ErrCodeRoomNotFound:      "La room n'existe pas.",
	ErrCodeRoomFull:          "La room est pleine.",
	ErrCodeNotInRoom:         "Vous n'êtes dans aucune room.",
	ErrCodeGameStarted:       "La partie a déjà commencé.",
	ErrCodeNoRoomCode:        "Aucun code de room disponible.",
	ErrCodeGameNotStart:      "La partie n'a pas encore commencé.",
	ErrCodeNotYourTurn:       "Ce n'est pas votre tour.",
	ErrCodeDrawPileEmpty:     "Votre pioche est vide.",
	ErrCodeServerMaintenance: "Serveur en maintenance.",
}
