package pets

import "context"

// SetAdopted y AdoptionState son lo que consume el coordinator de adopciones.
// Se exponen como métodos del Service para evitar ciclos de imports (pets <-> adoptions).
func (s *Service) SetAdopted(ctx context.Context, petID string, adopted bool) error {
	_, err := s.repo.SetAdopted(ctx, petID, adopted, s.now())
	return err
}

func (s *Service) AdoptionState(ctx context.Context, petID string) (adopted, available bool, err error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return false, false, err
	}
	return p.IsAdopted, p.IsAvailable, nil
}
