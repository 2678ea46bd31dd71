package repository

import (
	"fmt"
	"time"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/workflow"

	"gorm.io/gorm"
)

// Методы для неформализованных документов - упрощённый поток подписания
// между отправителем и произвольным набором получателей.

func (r *Repository) GetDocumentByID(id uint) (*ds.UnformalizedDocument, error) {
	var document ds.UnformalizedDocument
	err := r.db.
		Preload("Sender").
		Preload("Receivers").
		Preload("Receivers.Company").
		First(&document, id).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// Документы компании: отправленные ею и адресованные ей
func (r *Repository) GetDocumentsForCompany(companyID uint, status ds.DocumentStatus) ([]ds.UnformalizedDocument, error) {
	query := r.db.Model(&ds.UnformalizedDocument{}).
		Joins("LEFT JOIN unformalized_document_receivers r ON r.document_id = unformalized_documents.id").
		Where("unformalized_documents.sender_id = ? OR r.company_id = ?", companyID, companyID).
		Distinct().
		Preload("Sender").
		Preload("Receivers").
		Preload("Receivers.Company")

	if status != "" {
		query = query.Where("unformalized_documents.status = ?", status)
	}

	var documents []ds.UnformalizedDocument
	err := query.Order("unformalized_documents.created_at DESC").Find(&documents).Error
	return documents, err
}

func (r *Repository) CreateDocument(senderID uint, topic, message, attachmentKey string, receiverIDs []uint) (*ds.UnformalizedDocument, error) {
	if len(receiverIDs) == 0 {
		return nil, &workflow.ValidationError{Field: "ReceiverIDs", Message: "у документа должен быть хотя бы один получатель"}
	}

	var document *ds.UnformalizedDocument
	err := r.db.Transaction(func(tx *gorm.DB) error {
		document = &ds.UnformalizedDocument{
			SenderID:      senderID,
			Topic:         topic,
			Message:       message,
			Status:        ds.DocumentInProcess,
			AttachmentKey: attachmentKey,
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(document).Error; err != nil {
			return err
		}

		for _, companyID := range receiverIDs {
			if companyID == senderID {
				return &workflow.ValidationError{Field: "ReceiverIDs", Message: "отправитель не может быть получателем"}
			}
			receiver := ds.UnformalizedDocumentReceiver{
				DocumentID: document.ID,
				CompanyID:  companyID,
			}
			if err := tx.Create(&receiver).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return r.GetDocumentByID(document.ID)
}

// SignDocument фиксирует подпись получателя; когда подписали все получатели,
// документ переходит в статус "подписан".
func (r *Repository) SignDocument(documentID, userID, companyID uint, artifactKey string) (*ds.UnformalizedDocument, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var document ds.UnformalizedDocument
		if err := tx.Preload("Receivers").First(&document, documentID).Error; err != nil {
			return err
		}

		if document.Status != ds.DocumentInProcess {
			return &workflow.ForbiddenError{Reason: fmt.Sprintf("документ %d уже в статусе %s", document.ID, document.Status)}
		}

		var receiver *ds.UnformalizedDocumentReceiver
		allSigned := true
		for i := range document.Receivers {
			if document.Receivers[i].CompanyID == companyID {
				receiver = &document.Receivers[i]
			} else if !document.Receivers[i].IsSigned {
				allSigned = false
			}
		}
		if receiver == nil {
			return &workflow.ForbiddenError{Reason: fmt.Sprintf("компания %d не является получателем документа %d", companyID, documentID)}
		}
		if receiver.IsSigned {
			return &workflow.ForbiddenError{Reason: "документ уже подписан этой компанией"}
		}

		now := time.Now()
		receiver.IsSigned = true
		receiver.SignedAt = &now
		if err := tx.Save(receiver).Error; err != nil {
			return err
		}

		if allSigned {
			document.Status = ds.DocumentSigned
			if err := tx.Save(&document).Error; err != nil {
				return err
			}
		}

		signature := ds.Signature{
			UserID:      userID,
			CompanyID:   companyID,
			DocumentID:  &document.ID,
			ArtifactKey: artifactKey,
			CreatedAt:   now,
		}
		return tx.Create(&signature).Error
	})

	if err != nil {
		return nil, err
	}
	return r.GetDocumentByID(documentID)
}

// DeclineDocument отклоняет документ получателем с указанием причины
func (r *Repository) DeclineDocument(documentID, companyID uint, reason string) (*ds.UnformalizedDocument, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var document ds.UnformalizedDocument
		if err := tx.Preload("Receivers").First(&document, documentID).Error; err != nil {
			return err
		}

		if document.Status != ds.DocumentInProcess {
			return &workflow.ForbiddenError{Reason: fmt.Sprintf("документ %d уже в статусе %s", document.ID, document.Status)}
		}

		isReceiver := false
		for _, receiver := range document.Receivers {
			if receiver.CompanyID == companyID {
				isReceiver = true
				break
			}
		}
		if !isReceiver {
			return &workflow.ForbiddenError{Reason: fmt.Sprintf("компания %d не является получателем документа %d", companyID, documentID)}
		}

		document.Status = ds.DocumentDeclined
		document.DeclineReason = reason
		return tx.Save(&document).Error
	})

	if err != nil {
		return nil, err
	}
	return r.GetDocumentByID(documentID)
}
