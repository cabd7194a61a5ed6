/*
Package analysis implements the model-selection workflow for Random
Forest classifiers on labeled survey data: stratified train/test
splitting, SMOTE-style class balancing of the training partition,
cross-validated hyperparameter grid search, best-configuration
selection, final fitting and confusion-matrix evaluation, and
ROC-based decision-threshold calibration.

Datasets are immutable values threaded through the stages; no stage
mutates its input. Every stochastic step takes an explicit seed, and
seeds for parallel work units are derived deterministically, so a whole
run is reproducible regardless of scheduling.
*/
package analysis
