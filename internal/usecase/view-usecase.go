package usecase

import (
	"fmt"
	"slices"
	"sync"

	"github.com/iamvkosarev/persona-chat/internal/model"
)

// ViewUsecase tracks which page is active and whether the character modal is open.
type ViewUsecase struct {
	mu        sync.RWMutex
	pages     []model.PageID
	active    model.PageID
	modalOpen bool
}

func NewViewUsecase() *ViewUsecase {
	return &ViewUsecase{
		pages:  model.Pages,
		active: model.PageChat,
	}
}

func (v *ViewUsecase) SwitchPage(pageID model.PageID) error {
	if !slices.Contains(v.pages, pageID) {
		return fmt.Errorf("%w: %s", model.ErrUnknownPage, pageID)
	}
	v.mu.Lock()
	v.active = pageID
	v.mu.Unlock()
	return nil
}

func (v *ViewUsecase) ActivePage() model.PageID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active
}

func (v *ViewUsecase) IsActive(pageID model.PageID) bool {
	return v.ActivePage() == pageID
}

func (v *ViewUsecase) OpenModal() {
	v.setModal(true)
}

func (v *ViewUsecase) CloseModal() {
	v.setModal(false)
}

// ClickOverlay closes the modal unless the click landed on its content.
func (v *ViewUsecase) ClickOverlay(onContent bool) {
	if onContent {
		return
	}
	v.CloseModal()
}

func (v *ViewUsecase) ModalOpen() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.modalOpen
}

func (v *ViewUsecase) setModal(open bool) {
	v.mu.Lock()
	v.modalOpen = open
	v.mu.Unlock()
}
