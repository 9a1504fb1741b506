// package models defines the data model for the donation tracker
package models

// Model is implemented by every record that is validated before it is persisted.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for ledger data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
