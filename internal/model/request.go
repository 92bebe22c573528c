package model

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type SetModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required"`
}
