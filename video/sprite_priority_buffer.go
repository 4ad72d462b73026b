package video

// spritePriorityBuffer resolves sprite-to-pixel ownership for a scanline
// using the DMG priority rule (lower X wins; ties broken by lower OAM
// index) via a per-pixel ownership model: each sprite attempts to claim the
// pixels it covers, and only keeps ones it's entitled to under the priority
// rule, so the result does not depend on the order of tryClaim calls
// (drawSprites makes them in X-sorted order).
type spritePriorityBuffer struct {
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
}

func (s *spritePriorityBuffer) clear() {
	for i := range s.ownerIndex {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

func (s *spritePriorityBuffer) tryClaim(pixelX, spriteIndex, spriteX int) {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return
	}

	current := s.ownerIndex[pixelX]
	if current == -1 {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return
	}

	currentX := s.ownerX[pixelX]
	if spriteX < currentX || (spriteX == currentX && spriteIndex < current) {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
	}
}

func (s *spritePriorityBuffer) owner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
