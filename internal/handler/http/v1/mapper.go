package v1

import "github.com/satarknity/community_alerts/internal/models"

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа,
// выбирая режим отображения каждого вложения по расширению в URL
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	media := make([]MediaResponse, len(model.MediaURLs))
	for i, url := range model.MediaURLs {
		media[i] = MediaResponse{
			URL:  url,
			Kind: string(models.KindForURL(url)),
		}
	}
	return &IncidentResponse{
		ID:          model.ID,
		UserID:      model.UserID,
		Description: model.Description,
		Location:    model.Location,
		Media:       media,
		CreatedAt:   model.CreatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// SessionToResponse преобразует сессию провайдера в DTO
func SessionToResponse(session *models.Session) *SessionResponse {
	return &SessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		User:         UserResponse{ID: session.User.ID, Email: session.User.Email},
	}
}
