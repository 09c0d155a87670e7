package wire

// RequestCode identifies the purpose of a client request frame.
type RequestCode uint16

const (
	ReqRegister      RequestCode = 825
	ReqSendPublicKey RequestCode = 826
	ReqReconnect     RequestCode = 827
	ReqSendFile      RequestCode = 828
	ReqCRCOK         RequestCode = 900
	ReqCRCBad        RequestCode = 901
	ReqCRCBadFinal   RequestCode = 902
)

// ResponseCode identifies the purpose of a server response frame.
type ResponseCode uint16

const (
	RespRegisterOK         ResponseCode = 1600
	RespRegisterFail       ResponseCode = 1601
	RespKeyAccepted        ResponseCode = 1602
	RespFileReceivedCRC    ResponseCode = 1603
	RespThanks             ResponseCode = 1604
	RespReconnectOK        ResponseCode = 1605
	RespReconnectRejected  ResponseCode = 1606
	RespGeneralError       ResponseCode = 1607
)

// ServerVersion is the constant version byte echoed in every response header.
const ServerVersion uint8 = 3

// Fixed field and payload widths, per the wire format.
const (
	NameFieldSize   = 255
	RSAPubFieldSize = 160
	ChunkSize       = 1024

	RequestHeaderSize  = 23
	ResponseHeaderSize = 7

	RegisterPayloadSize     = NameFieldSize
	SendPublicKeyPayloadSize = NameFieldSize + RSAPubFieldSize // 415
	ReconnectPayloadSize    = NameFieldSize
	SendFilePayloadSize     = 4 + 4 + 2 + 2 + NameFieldSize + ChunkSize // 1291
	CRCConfirmPayloadSize   = NameFieldSize

	UUIDRespPayloadSize    = 16
	KeyRespPayloadSize     = 16 + 128 // 144
	FileReceivedPayloadSize = 16 + 4 + NameFieldSize + 4 // 279
	ThanksPayloadSize      = NameFieldSize

	WrappedAESSize = 128
	AESKeySize     = 32
)
